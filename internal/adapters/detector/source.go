// Package detector adapts external face-landmark models to landmark.Set.
package detector

import (
	"context"

	"github.com/okian/heist/internal/domain/landmark"
)

// Source detects face landmarks in one encoded image. A nil set with a nil
// error means no face was found.
//
// Implementations are not required to be safe for concurrent use; callers
// that detect in parallel should hold one Source per goroutine.
type Source interface {
	Detect(ctx context.Context, image []byte) (landmark.Set, error)
	Close() error
}

// Factory builds a fresh Source.
type Factory func() (Source, error)

// NewFactory returns a factory for FaceMeshSource when command is set and
// for a no-face StaticSource otherwise.
func NewFactory(command []string, opts ...Option) Factory {
	if len(command) == 0 {
		return func() (Source, error) { return NewStaticSource(nil), nil }
	}
	return func() (Source, error) { return NewFaceMeshSource(command, opts...) }
}
