package model

// Direction is the coarse horizontal head orientation.
type Direction string

// Head directions.
const (
	DirectionLeft   Direction = "left"
	DirectionRight  Direction = "right"
	DirectionCenter Direction = "center"
)

// Signals are the control signals derived from one frame.
type Signals struct {
	MouthOpen     bool      `json:"mouth_open"`
	EyebrowRaise  bool      `json:"eyebrow_raise"`
	Blink         bool      `json:"blink"`
	HeadDirection Direction `json:"head_direction"`
	HeadX         float64   `json:"head_x"` // yaw proxy in [-1, 1]
	HeadY         float64   `json:"head_y"` // pitch proxy in [-1, 1], positive is up
}

// NeutralSignals is the value reported when no face is available.
func NeutralSignals() Signals {
	return Signals{HeadDirection: DirectionCenter}
}

// Active returns the names of the boolean signals that are set, in a fixed
// order. Head direction counts when it is not center.
func (s Signals) Active() []string {
	var out []string
	if s.MouthOpen {
		out = append(out, "mouth_open")
	}
	if s.EyebrowRaise {
		out = append(out, "eyebrow_raise")
	}
	if s.Blink {
		out = append(out, "blink")
	}
	if s.HeadDirection == DirectionLeft || s.HeadDirection == DirectionRight {
		out = append(out, "head_"+string(s.HeadDirection))
	}
	return out
}
