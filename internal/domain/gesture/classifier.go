// Package gesture derives game control signals from a single frame of face
// landmarks. Every function is pure: it keeps no history between frames and
// reports neutral values when the points it needs are missing.
package gesture

import (
	"math"

	"github.com/okian/heist/internal/domain/landmark"
	"github.com/okian/heist/internal/domain/model"
)

// Default thresholds in normalized image units.
const (
	MouthOpenThreshold = 0.04
	EyebrowThreshold   = 0.04
	// BlinkThreshold is the current closed-eye lid gap.
	BlinkThreshold = 0.03
	// LegacyBlinkThreshold is the tighter gap used by the first release.
	// Kept selectable through WithBlinkThreshold.
	LegacyBlinkThreshold = 0.015
	// PoseGain scales nose offsets into the [-1, 1] yaw/pitch range.
	PoseGain = 8.0
)

// Classifier holds tunable thresholds. The zero value is not usable; build
// one with New.
type Classifier struct {
	mouthThreshold   float64
	eyebrowThreshold float64
	blinkThreshold   float64
	poseGain         float64
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithMouthThreshold sets the lip gap above which the mouth counts as open.
func WithMouthThreshold(v float64) Option {
	return func(c *Classifier) {
		if v > 0 {
			c.mouthThreshold = v
		}
	}
}

// WithEyebrowThreshold sets how far above the eye a brow must sit to count
// as raised.
func WithEyebrowThreshold(v float64) Option {
	return func(c *Classifier) {
		if v > 0 {
			c.eyebrowThreshold = v
		}
	}
}

// WithBlinkThreshold sets the lid gap below which an eye counts as closed.
func WithBlinkThreshold(v float64) Option {
	return func(c *Classifier) {
		if v > 0 {
			c.blinkThreshold = v
		}
	}
}

// WithPoseGain sets the multiplier applied to nose offsets for head pose.
func WithPoseGain(v float64) Option {
	return func(c *Classifier) {
		if v > 0 {
			c.poseGain = v
		}
	}
}

// New creates a Classifier with the default thresholds and applies opts.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		mouthThreshold:   MouthOpenThreshold,
		eyebrowThreshold: EyebrowThreshold,
		blinkThreshold:   BlinkThreshold,
		poseGain:         PoseGain,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = New()

// Default returns the classifier used by the package-level functions.
func Default() *Classifier { return defaultClassifier }

// BlinkThreshold returns the configured closed-eye gap.
func (c *Classifier) BlinkThreshold() float64 { return c.blinkThreshold }

// Classify computes every signal from the same landmark snapshot. An absent
// set yields model.NeutralSignals.
func (c *Classifier) Classify(set landmark.Set) model.Signals {
	if !set.Present() {
		return model.NeutralSignals()
	}
	yaw, pitch := c.HeadPose(set)
	return model.Signals{
		MouthOpen:     c.MouthOpen(set),
		EyebrowRaise:  c.EyebrowRaised(set),
		Blink:         c.Blink(set),
		HeadDirection: c.HeadDirection(set),
		HeadX:         yaw,
		HeadY:         pitch,
	}
}

// MouthOpen reports whether the inner lip gap exceeds the mouth threshold.
func (c *Classifier) MouthOpen(set landmark.Set) bool {
	gap, ok := lipGap(set)
	return ok && gap > c.mouthThreshold
}

// EyebrowRaised reports whether either brow sits above its eye by more than
// the eyebrow threshold. All four points must be present.
func (c *Classifier) EyebrowRaised(set landmark.Set) bool {
	left, right, ok := browOffsets(set)
	if !ok {
		return false
	}
	return left < -c.eyebrowThreshold || right < -c.eyebrowThreshold
}

// Blink reports whether either eye's lid gap is below the blink threshold.
func (c *Classifier) Blink(set landmark.Set) bool {
	left, right, ok := lidGaps(set)
	if !ok {
		return false
	}
	return left < c.blinkThreshold || right < c.blinkThreshold
}

// HeadDirection compares the nose tip against both cheeks.
func (c *Classifier) HeadDirection(set landmark.Set) model.Direction {
	pts, ok := set.All(landmark.NoseTip, landmark.LeftCheek, landmark.RightCheek)
	if !ok {
		return model.DirectionCenter
	}
	nose, left, right := pts[0], pts[1], pts[2]
	switch {
	case nose.X < left.X:
		return model.DirectionLeft
	case nose.X > right.X:
		return model.DirectionRight
	default:
		return model.DirectionCenter
	}
}

// HeadPose returns yaw and pitch proxies clamped to [-1, 1]. Pitch is
// positive when looking up.
func (c *Classifier) HeadPose(set landmark.Set) (yaw, pitch float64) {
	pts, ok := set.All(landmark.NoseTip, landmark.LeftCheek, landmark.RightCheek, landmark.Chin, landmark.Forehead)
	if !ok {
		return 0, 0
	}
	nose, left, right, chin, forehead := pts[0], pts[1], pts[2], pts[3], pts[4]
	yaw = clamp((nose.X-midpoint(left.X, right.X))*c.poseGain, -1, 1)
	pitch = clamp((nose.Y-midpoint(chin.Y, forehead.Y))*-c.poseGain, -1, 1)
	return yaw, pitch
}

// Package-level helpers using the default thresholds.

// Classify computes all signals with the default classifier.
func Classify(set landmark.Set) model.Signals { return defaultClassifier.Classify(set) }

// MouthOpen uses the default classifier.
func MouthOpen(set landmark.Set) bool { return defaultClassifier.MouthOpen(set) }

// EyebrowRaised uses the default classifier.
func EyebrowRaised(set landmark.Set) bool { return defaultClassifier.EyebrowRaised(set) }

// Blink uses the default classifier.
func Blink(set landmark.Set) bool { return defaultClassifier.Blink(set) }

// HeadDirection uses the default classifier.
func HeadDirection(set landmark.Set) model.Direction { return defaultClassifier.HeadDirection(set) }

// HeadPose uses the default classifier.
func HeadPose(set landmark.Set) (yaw, pitch float64) { return defaultClassifier.HeadPose(set) }

func midpoint(a, b float64) float64 { return (a + b) / 2 }

// clamp bounds v to [lo, hi]. NaN maps to 0.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}
