package detector

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/heist/internal/domain/landmark"
)

// response is the JSON document the face-mesh helper writes per frame.
type response struct {
	Faces []jsonFace `json:"faces"`
	Error string     `json:"error,omitempty"`
}

type jsonFace struct {
	Landmarks []landmark.Landmark `json:"landmarks"`
}

// first returns the first face, or nil when none was found.
func (r response) first() landmark.Set {
	if len(r.Faces) == 0 || len(r.Faces[0].Landmarks) == 0 {
		return nil
	}
	return landmark.Set(r.Faces[0].Landmarks)
}

func parseResponse(data []byte) (landmark.Set, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Error)
	}
	return resp.first(), nil
}

// DecodeSet reads one detector response document from r and returns the
// first face. A document without faces yields a nil set.
func DecodeSet(r io.Reader) (landmark.Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	return parseResponse(data)
}
