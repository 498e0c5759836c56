package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteFramesAllChannelsPitchesVelocities(t *testing.T) {
	for c := 0; c < 16; c++ {
		for p := 0; p < 128; p++ {
			off := NoteOff(uint8(p), uint8(c))
			require.Equal(t, []byte{0x80 | byte(c), byte(p), 0}, off)
			for v := 0; v < 128; v += 9 {
				on := NoteOn(uint8(p), uint8(v), uint8(c))
				require.Equal(t, []byte{0x90 | byte(c), byte(p), byte(v)}, on)
			}
		}
	}
}

func TestControlChangePassesThrough(t *testing.T) {
	assert.Equal(t, []byte{0xB0, 64, 127}, ControlChange(ControllerSustain, 127, 0))
	assert.Equal(t, []byte{0xBF, 200, 255}, ControlChange(200, 255, 15))
}

func TestPitchBendSplit(t *testing.T) {
	for _, tc := range []struct {
		value int
		want  []byte
	}{
		{value: 0, want: []byte{0xE0, 0x00, 0x00}},
		{value: 1, want: []byte{0xE0, 0x01, 0x00}},
		{value: 128, want: []byte{0xE0, 0x00, 0x01}},
		{value: 8191, want: []byte{0xE0, 0x7F, 0x3F}},
		{value: -1, want: []byte{0xE0, 0x7F, 0x7F}},
		{value: -4096, want: []byte{0xE0, 0x00, 0x60}},
		{value: -8192, want: []byte{0xE0, 0x00, 0x40}},
	} {
		assert.Equal(t, tc.want, PitchBend(tc.value, 0), "value %d", tc.value)
	}
	assert.Equal(t, byte(0xE3), PitchBend(0, 3)[0])
}

func TestPitchBendRoundTrip(t *testing.T) {
	for x := PitchBendMin; x <= PitchBendMax; x++ {
		f := PitchBend(x, 0)
		require.LessOrEqual(t, f[1], byte(0x7F))
		require.LessOrEqual(t, f[2], byte(0x7F))
		require.Equal(t, x, DecodePitchBend(f[1], f[2]), "value %d", x)
	}
}

func TestTransport(t *testing.T) {
	for _, tc := range []struct {
		name string
		want byte
	}{
		{"start", 0xFA},
		{"STOP", 0xFC},
		{"continue", 0xFB},
	} {
		tr, err := ParseTransport(tc.name)
		require.NoError(t, err)
		assert.Equal(t, []byte{tc.want}, tr.Frame())
	}
	_, err := ParseTransport("rewind")
	assert.Error(t, err)
	assert.Equal(t, "CONTINUE", Continue.String())
}

func TestVelocityRoundTrip(t *testing.T) {
	for b := 0; b < 128; b++ {
		assert.Equal(t, uint8(b), VelocityFromByte(uint8(b)).Byte())
	}
	assert.Equal(t, uint8(0), Velocity(-0.5).Byte())
	assert.Equal(t, uint8(127), Velocity(1.7).Byte())
	assert.Equal(t, uint8(89), Velocity(0.7).Byte())
	assert.False(t, Velocity(1.01).Valid())
	assert.True(t, Velocity(0).Valid())
}
