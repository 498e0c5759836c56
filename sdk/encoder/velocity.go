package encoder

import "math"

// Velocity is loudness normalized to 0.0-1.0. The byte API and the
// channel API convert to their own wire form at the port boundary.
type Velocity float64

// VelocityFromByte maps 0-127 onto 0.0-1.0. Values above 127 saturate.
func VelocityFromByte(b uint8) Velocity {
	if b > 127 {
		b = 127
	}
	return Velocity(float64(b) / 127)
}

// Byte maps the velocity onto 0-127, clamping values outside 0.0-1.0.
func (v Velocity) Byte() uint8 {
	f := float64(v)
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 1:
		return 127
	}
	return uint8(math.Round(f * 127))
}

// Valid reports whether v lies within 0.0-1.0.
func (v Velocity) Valid() bool {
	return v >= 0 && v <= 1
}
