package channels

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// NoteOptions mirrors the wrapper library's playNote options.
type NoteOptions struct {
	Duration time.Duration // zero leaves the note on
	Attack   float64       // 0.0-1.0; zero means DefaultAttack
}

// Channel is one of the sixteen MIDI channels of an Output.
type Channel struct {
	out    *Output
	number int
}

// Number returns the 1-based channel number.
func (c *Channel) Number() int { return c.number }

func (c *Channel) wire() uint8 { return uint8(c.number - 1) }

// PlayNote sends a note-on, and a note-off after opts.Duration if set.
// Out-of-range notes and attacks are rejected with contracts.ErrOutOfRange.
func (c *Channel) PlayNote(note int, opts NoteOptions) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("%w: note %d", contracts.ErrOutOfRange, note)
	}
	attack := opts.Attack
	if attack == 0 {
		attack = DefaultAttack
	}
	if math.IsNaN(attack) || attack < 0 || attack > 1 {
		return fmt.Errorf("%w: attack %v", contracts.ErrOutOfRange, opts.Attack)
	}
	vel := uint8(math.Round(attack * 127))
	if vel == 0 {
		vel = 1
	}

	f := c.out.logger.Field()
	if err := c.out.send(midi.NoteOn(c.wire(), uint8(note), vel), "Note On",
		f.Int("note", note), f.Int("channel", c.number)); err != nil {
		return err
	}
	if opts.Duration > 0 {
		c.out.clock.AfterFunc(opts.Duration, func() {
			if err := c.StopNote(note); err != nil && !errors.Is(err, contracts.ErrPortNotSelected) {
				c.out.logger.Error("Scheduled note off failed", c.out.logger.Field().Error("error", err))
			}
		})
	}
	return nil
}

// StopNote sends a note-off.
func (c *Channel) StopNote(note int) error {
	if note < 0 || note > 127 {
		return fmt.Errorf("%w: note %d", contracts.ErrOutOfRange, note)
	}
	f := c.out.logger.Field()
	return c.out.send(midi.NoteOff(c.wire(), uint8(note)), "Note Off",
		f.Int("note", note), f.Int("channel", c.number))
}

// SendControlChange sends a control change with both numbers in 0-127.
func (c *Channel) SendControlChange(controller, value int) error {
	if controller < 0 || controller > 127 || value < 0 || value > 127 {
		return fmt.Errorf("%w: cc %d=%d", contracts.ErrOutOfRange, controller, value)
	}
	f := c.out.logger.Field()
	return c.out.send(midi.ControlChange(c.wire(), uint8(controller), uint8(value)), "CC",
		f.Int("controller", controller), f.Int("value", value), f.Int("channel", c.number))
}

// SendPitchBend sends a centered bend in -8192..8191, where 0 is no bend.
func (c *Channel) SendPitchBend(value int) error {
	if value < -8192 || value > 8191 {
		return fmt.Errorf("%w: pitch bend %d", contracts.ErrOutOfRange, value)
	}
	f := c.out.logger.Field()
	return c.out.send(midi.Pitchbend(c.wire(), int16(value)), "Pitch Bend",
		f.Int("value", value), f.Int("channel", c.number))
}

// SendAllNotesOff sends controller 123 with value 0.
func (c *Channel) SendAllNotesOff() error {
	return c.out.send(midi.ControlChange(c.wire(), allNotesOff, 0), "All Notes Off",
		c.out.logger.Field().Int("channel", c.number))
}
