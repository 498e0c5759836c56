// Package encoder turns note, control-change, pitch-bend and transport
// events into raw MIDI frames and sends them through the selected port.
package encoder

import (
	"fmt"
	"strings"
)

// Channel voice status nibbles.
const (
	StatusNoteOff       byte = 0x80
	StatusNoteOn        byte = 0x90
	StatusControlChange byte = 0xB0
	StatusPitchBend     byte = 0xE0
)

// Controller numbers used by the harness.
const (
	ControllerSustain     uint8 = 64
	ControllerAllNotesOff uint8 = 123
)

// PitchBendMin and PitchBendMax bound the signed 14-bit bend range.
const (
	PitchBendMin = -8192
	PitchBendMax = 8191
)

// NoteOn returns [0x90|channel, pitch, velocity]. Nothing is masked:
// the channel must already be 0-15.
func NoteOn(pitch, velocity, channel uint8) []byte {
	return []byte{StatusNoteOn | channel, pitch, velocity}
}

// NoteOff returns [0x80|channel, pitch, 0]. Release velocity is always 0.
func NoteOff(pitch, channel uint8) []byte {
	return []byte{StatusNoteOff | channel, pitch, 0}
}

// ControlChange returns [0xB0|channel, controller, value] without range checks.
func ControlChange(controller, value, channel uint8) []byte {
	return []byte{StatusControlChange | channel, controller, value}
}

// PitchBend splits value into its low and high 7 bits:
// [0xE0|channel, value&0x7F, (value>>7)&0x7F]. The value is not offset
// or clamped, so negative values land in the upper half of the 14-bit field.
func PitchBend(value int, channel uint8) []byte {
	return []byte{StatusPitchBend | channel, byte(value & 0x7F), byte((value >> 7) & 0x7F)}
}

// DecodePitchBend reverses PitchBend by sign-extending the 14-bit field.
func DecodePitchBend(lsb, msb byte) int {
	raw := int(msb&0x7F)<<7 | int(lsb&0x7F)
	if raw&0x2000 != 0 {
		raw -= 0x4000
	}
	return raw
}

// Transport is a single-byte system real-time message.
type Transport byte

const (
	Start    Transport = 0xFA
	Continue Transport = 0xFB
	Stop     Transport = 0xFC
)

// Frame returns the one-byte message.
func (t Transport) Frame() []byte {
	return []byte{byte(t)}
}

func (t Transport) String() string {
	switch t {
	case Start:
		return "START"
	case Continue:
		return "CONTINUE"
	case Stop:
		return "STOP"
	default:
		return fmt.Sprintf("Transport(0x%02X)", byte(t))
	}
}

// ParseTransport accepts "start", "stop" or "continue".
func ParseTransport(name string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "start", "play":
		return Start, nil
	case "stop":
		return Stop, nil
	case "continue":
		return Continue, nil
	}
	return 0, fmt.Errorf("unknown transport %q", name)
}
