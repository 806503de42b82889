package detector

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/heist/internal/domain/landmark"
)

// StaticSource returns the same landmark set for every image. It stands in
// for a real model in tests and when no detector command is configured.
type StaticSource struct {
	set landmark.Set
	err error
}

// NewStaticSource returns a source that always reports set. A nil set
// reports no face.
func NewStaticSource(set landmark.Set) *StaticSource {
	return &StaticSource{set: slices.Clone(set)}
}

// NewFailingSource returns a source whose every Detect fails with err.
func NewFailingSource(err error) *StaticSource {
	return &StaticSource{err: err}
}

// Detect returns a copy of the configured set.
func (s *StaticSource) Detect(ctx context.Context, image []byte) (landmark.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.set), nil
}

// Close is a no-op.
func (s *StaticSource) Close() error { return nil }
