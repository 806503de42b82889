// Package landmark holds the face-mesh point types consumed by the gesture
// classifier.
package landmark

// Face-mesh landmark indices following the MediaPipe 468-point layout.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip          = 1
	Forehead         = 10
	UpperLipInner    = 13
	LowerLipInner    = 14
	LeftBrow         = 65
	LeftEyeLower     = 145
	Chin             = 152
	LeftEyeUpper     = 159
	LeftCheek        = 234
	RightBrow        = 295
	RightEyeLower    = 374
	RightEyeUpper    = 386
	RightCheek       = 454
	FaceMeshSize     = 468
	FaceMeshIrisSize = 478 // refined mesh adds 10 iris points
)

// Landmark is a single tracked point in normalized image coordinates.
// X grows to the right and Y grows downward; Z is relative depth.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is the ordered landmark sequence for one face. A nil Set means no
// face was found. Sets shorter than FaceMeshSize are valid; indices past
// the end simply resolve as missing.
type Set []Landmark

// At returns the landmark at index i and whether it exists.
func (s Set) At(i int) (Landmark, bool) {
	if i < 0 || i >= len(s) {
		return Landmark{}, false
	}
	return s[i], true
}

// All resolves every index in order. ok is false as soon as one index is
// missing, in which case the returned slice is nil.
func (s Set) All(indices ...int) ([]Landmark, bool) {
	out := make([]Landmark, len(indices))
	for i, idx := range indices {
		p, ok := s.At(idx)
		if !ok {
			return nil, false
		}
		out[i] = p
	}
	return out, true
}

// Present reports whether the set holds a face.
func (s Set) Present() bool {
	return len(s) > 0
}
