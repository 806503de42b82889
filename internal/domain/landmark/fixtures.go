package landmark

// NeutralFace returns a full face-mesh set for a frontal face at rest:
// mouth closed, eyes open, brows relaxed, head centered. Points the
// classifier does not read sit at the face center.
func NeutralFace() Set {
	set := make(Set, FaceMeshSize)
	for i := range set {
		set[i] = Landmark{X: 0.5, Y: 0.55}
	}

	set[NoseTip] = Landmark{X: 0.5, Y: 0.55, Z: -0.05}
	set[Forehead] = Landmark{X: 0.5, Y: 0.25}
	set[Chin] = Landmark{X: 0.5, Y: 0.85}
	set[LeftCheek] = Landmark{X: 0.3, Y: 0.55}
	set[RightCheek] = Landmark{X: 0.7, Y: 0.55}

	set[UpperLipInner] = Landmark{X: 0.5, Y: 0.68}
	set[LowerLipInner] = Landmark{X: 0.5, Y: 0.70}

	set[LeftEyeUpper] = Landmark{X: 0.4, Y: 0.42}
	set[LeftEyeLower] = Landmark{X: 0.4, Y: 0.47}
	set[RightEyeUpper] = Landmark{X: 0.6, Y: 0.42}
	set[RightEyeLower] = Landmark{X: 0.6, Y: 0.47}

	set[LeftBrow] = Landmark{X: 0.4, Y: 0.39}
	set[RightBrow] = Landmark{X: 0.6, Y: 0.39}

	return set
}

// MouthOpenFace is NeutralFace with the jaw dropped.
func MouthOpenFace() Set {
	set := NeutralFace()
	set[LowerLipInner].Y = 0.76
	return set
}

// BrowRaisedFace is NeutralFace with the left brow lifted.
func BrowRaisedFace() Set {
	set := NeutralFace()
	set[LeftBrow].Y = 0.35
	return set
}

// BlinkFace is NeutralFace with the right eye closed.
func BlinkFace() Set {
	set := NeutralFace()
	set[RightEyeLower].Y = set[RightEyeUpper].Y + 0.01
	return set
}

// TurnedFace is NeutralFace with the nose moved horizontally by dx.
func TurnedFace(dx float64) Set {
	set := NeutralFace()
	set[NoseTip].X += dx
	return set
}
