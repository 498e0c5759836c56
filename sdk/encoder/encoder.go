package encoder

import (
	"fmt"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

// Encoder sends frames through whichever port its source currently holds.
// Every method is a logged no-op returning contracts.ErrPortNotSelected
// when no port is selected.
type Encoder struct {
	ports  contracts.PortSource
	logger contracts.Logger
}

// New creates an Encoder borrowing ports from src.
func New(src contracts.PortSource, logger contracts.Logger) *Encoder {
	return &Encoder{ports: src, logger: logger}
}

// NoteOn sends [0x90|channel, pitch, velocity].
func (e *Encoder) NoteOn(pitch, velocity, channel uint8) error {
	f := e.logger.Field()
	return e.send(NoteOn(pitch, velocity, channel), "Note On",
		f.Uint8("pitch", pitch), f.Uint8("velocity", velocity), f.Uint8("channel", channel))
}

// NoteOff sends [0x80|channel, pitch, 0].
func (e *Encoder) NoteOff(pitch, channel uint8) error {
	f := e.logger.Field()
	return e.send(NoteOff(pitch, channel), "Note Off",
		f.Uint8("pitch", pitch), f.Uint8("channel", channel))
}

// ControlChange sends [0xB0|channel, controller, value].
func (e *Encoder) ControlChange(controller, value, channel uint8) error {
	f := e.logger.Field()
	return e.send(ControlChange(controller, value, channel), "CC",
		f.Uint8("controller", controller), f.Uint8("value", value), f.Uint8("channel", channel))
}

// SustainOn sends CC 64 = 127.
func (e *Encoder) SustainOn(channel uint8) error {
	return e.send(ControlChange(ControllerSustain, 127, channel), "Sustain ON",
		e.logger.Field().Uint8("channel", channel))
}

// SustainOff sends CC 64 = 0.
func (e *Encoder) SustainOff(channel uint8) error {
	return e.send(ControlChange(ControllerSustain, 0, channel), "Sustain OFF",
		e.logger.Field().Uint8("channel", channel))
}

// PitchBend sends the raw 14-bit split of value.
func (e *Encoder) PitchBend(value int, channel uint8) error {
	f := e.logger.Field()
	return e.send(PitchBend(value, channel), "Pitch Bend",
		f.Int("value", value), f.Uint8("channel", channel))
}

// ResetPitchBend sends a bend value of 0.
func (e *Encoder) ResetPitchBend(channel uint8) error {
	return e.send(PitchBend(0, channel), "Pitch Bend Reset",
		e.logger.Field().Uint8("channel", channel))
}

// Transport sends a start, stop or continue message.
func (e *Encoder) Transport(t Transport) error {
	return e.send(t.Frame(), fmt.Sprintf("Transport: %s", t))
}

// Send transmits an arbitrary frame.
func (e *Encoder) Send(frame []byte) error {
	return e.send(frame, "Raw")
}

// Ready reports whether a port is selected.
func (e *Encoder) Ready() bool {
	_, ok := e.ports.Port()
	return ok
}

func (e *Encoder) send(frame []byte, what string, fields ...contracts.Field) error {
	port, ok := e.ports.Port()
	if !ok {
		e.logger.Warn("Port not initialized", e.logger.Field().String("action", what))
		return contracts.ErrPortNotSelected
	}
	if err := port.Send(frame); err != nil {
		e.logger.Error(what+" failed",
			e.logger.Field().String("port", port.Name()),
			e.logger.Field().Error("error", err))
		return fmt.Errorf("%s: %w", what, err)
	}
	e.logger.Info(what, append(fields, e.logger.Field().Bytes("frame", frame))...)
	return nil
}
