package gesture

import (
	"math"

	"github.com/okian/heist/internal/domain/landmark"
)

// Measurements are the raw distances the classifier compares against its
// thresholds. A field is only meaningful when its *OK flag is set.
type Measurements struct {
	LipGap   float64 `json:"lip_gap"`
	LipGapOK bool    `json:"lip_gap_ok"`

	LeftBrowOffset  float64 `json:"left_brow_offset"`
	RightBrowOffset float64 `json:"right_brow_offset"`
	BrowOK          bool    `json:"brow_ok"`

	LeftLidGap  float64 `json:"left_lid_gap"`
	RightLidGap float64 `json:"right_lid_gap"`
	LidOK       bool    `json:"lid_ok"`
}

// Measure reports the intermediate distances for set. It is used for
// diagnostics only and never feeds back into Classify.
func Measure(set landmark.Set) Measurements {
	var m Measurements
	m.LipGap, m.LipGapOK = lipGap(set)
	m.LeftBrowOffset, m.RightBrowOffset, m.BrowOK = browOffsets(set)
	m.LeftLidGap, m.RightLidGap, m.LidOK = lidGaps(set)
	return m
}

func lipGap(set landmark.Set) (float64, bool) {
	pts, ok := set.All(landmark.UpperLipInner, landmark.LowerLipInner)
	if !ok {
		return 0, false
	}
	return math.Abs(pts[0].Y - pts[1].Y), true
}

// browOffsets returns brow.Y - eye.Y per side; negative means the brow is
// above the eye.
func browOffsets(set landmark.Set) (left, right float64, ok bool) {
	pts, ok := set.All(landmark.LeftBrow, landmark.LeftEyeUpper, landmark.RightBrow, landmark.RightEyeUpper)
	if !ok {
		return 0, 0, false
	}
	return pts[0].Y - pts[1].Y, pts[2].Y - pts[3].Y, true
}

func lidGaps(set landmark.Set) (left, right float64, ok bool) {
	pts, ok := set.All(landmark.LeftEyeUpper, landmark.LeftEyeLower, landmark.RightEyeUpper, landmark.RightEyeLower)
	if !ok {
		return 0, 0, false
	}
	return math.Abs(pts[0].Y - pts[1].Y), math.Abs(pts[2].Y - pts[3].Y), true
}
