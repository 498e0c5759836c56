// Package channels is the channel-scoped front end: channels 1-16,
// normalized attack, and notes that switch themselves off after a
// duration. Messages are built with gomidi and validated before sending.
package channels

import (
	"fmt"
	"strings"
	"time"

	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/scheduler"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
)

// DefaultAttack is used when NoteOptions.Attack is zero.
const DefaultAttack = 0.5

// allNotesOff is the channel mode controller that silences a channel.
const allNotesOff = 123

// Output sends to the session's current port.
type Output struct {
	ports  contracts.PortSource
	clock  scheduler.Clock
	logger contracts.Logger
}

// Option configures an Output.
type Option func(*Output)

// WithClock replaces the wall clock used for timed note-offs.
func WithClock(c scheduler.Clock) Option {
	return func(o *Output) { o.clock = c }
}

// NewOutput creates an Output borrowing ports from src.
func NewOutput(src contracts.PortSource, logger contracts.Logger, opts ...Option) *Output {
	o := &Output{ports: src, clock: scheduler.Real(), logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Channel returns the 1-based channel n.
func (o *Output) Channel(n int) (*Channel, error) {
	if n < 1 || n > 16 {
		return nil, fmt.Errorf("%w: channel %d not in 1-16", contracts.ErrOutOfRange, n)
	}
	return &Channel{out: o, number: n}, nil
}

// SendAllNotesOff sends All Notes Off on channels 1-16.
func (o *Output) SendAllNotesOff() error {
	if _, ok := o.ports.Port(); !ok {
		o.logger.Warn("No output selected")
		return contracts.ErrPortNotSelected
	}
	var err error
	for n := 1; n <= 16; n++ {
		ch, _ := o.Channel(n)
		err = multierr.Append(err, ch.SendAllNotesOff())
	}
	o.logger.Info("All notes off (all channels)")
	return err
}

// Start sends the transport start message.
func (o *Output) Start() error { return o.send(midi.Start(), "Transport: START") }

// Stop sends the transport stop message.
func (o *Output) Stop() error { return o.send(midi.Stop(), "Transport: STOP") }

// Continue sends the transport continue message.
func (o *Output) Continue() error { return o.send(midi.Continue(), "Transport: CONTINUE") }

// PlayChord plays a chord on the 0-based channel with a normalized
// velocity, switching it off after duration. It satisfies the
// sequencer's ChordPlayer.
func (o *Output) PlayChord(root uint8, chordType string, channel uint8, velocity encoder.Velocity, duration time.Duration) ([]uint8, error) {
	if _, ok := o.ports.Port(); !ok {
		o.logger.Warn("No output selected")
		return []uint8{}, contracts.ErrPortNotSelected
	}
	ch, err := o.Channel(int(channel) + 1)
	if err != nil {
		o.logger.Error("Chord rejected", o.logger.Field().Error("error", err))
		return []uint8{}, err
	}
	notes, err := chord.Expand(int(root), chordType)
	if err != nil {
		o.logger.Warn("Unknown chord type", o.logger.Field().String("chord", chordType))
		return notes, err
	}

	opts := NoteOptions{Duration: duration, Attack: float64(velocity)}
	played := make([]uint8, 0, len(notes))
	for _, n := range notes {
		if err := ch.PlayNote(int(n), opts); err != nil {
			return played, err
		}
		played = append(played, n)
	}

	name, _ := chord.Resolve(chordType)
	o.logger.Info(strings.ToUpper(name),
		o.logger.Field().String("notes", chord.Label(played)),
		o.logger.Field().Int("ch", ch.number),
		o.logger.Field().Float64("vel", float64(velocity)),
		o.logger.Field().Int64("dur_ms", duration.Milliseconds()))
	return played, nil
}

func (o *Output) send(msg midi.Message, what string, fields ...contracts.Field) error {
	port, ok := o.ports.Port()
	if !ok {
		o.logger.Warn("No output selected", o.logger.Field().String("action", what))
		return contracts.ErrPortNotSelected
	}
	if err := port.Send(msg.Bytes()); err != nil {
		o.logger.Error(what+" failed", o.logger.Field().Error("error", err))
		return fmt.Errorf("%s: %w", what, err)
	}
	o.logger.Debug(what, append(fields, o.logger.Field().String("msg", msg.String()))...)
	return nil
}
