// Package player plays notes and chords through the raw byte encoder,
// tracks what is sounding, and releases it on demand.
package player

import (
	"errors"
	"strings"
	"time"

	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/scheduler"
	"github.com/leandrodaf/midiharness/sdk/tracker"
)

// Player is the byte-API front end: channels are 0-15 and velocities
// are converted to 0-127 at the port.
type Player struct {
	enc    *encoder.Encoder
	active *tracker.Tracker
	clock  scheduler.Clock
	logger contracts.Logger
	track  bool
}

// Option configures a Player.
type Option func(*Player)

// WithClock replaces the wall clock used for timed note-offs.
func WithClock(c scheduler.Clock) Option {
	return func(p *Player) { p.clock = c }
}

// WithTracking turns active-note tracking on or off. It is on by default.
func WithTracking(on bool) Option {
	return func(p *Player) { p.track = on }
}

// New creates a Player sending through enc and recording into active.
func New(enc *encoder.Encoder, active *tracker.Tracker, logger contracts.Logger, opts ...Option) *Player {
	p := &Player{
		enc:    enc,
		active: active,
		clock:  scheduler.Real(),
		logger: logger,
		track:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlayChord turns on every in-range pitch of the chord and returns them.
// A positive duration schedules the matching note-offs.
func (p *Player) PlayChord(root uint8, chordType string, channel uint8, velocity encoder.Velocity, duration time.Duration) ([]uint8, error) {
	pitches, _, err := p.PlayChordTask(root, chordType, channel, velocity, duration)
	return pitches, err
}

// PlayChordTask is PlayChord returning the handle of the scheduled note-offs.
// The task is nil when no duration was given or nothing was played.
func (p *Player) PlayChordTask(root uint8, chordType string, channel uint8, velocity encoder.Velocity, duration time.Duration) ([]uint8, *scheduler.Task, error) {
	if !p.enc.Ready() {
		p.logger.Warn("Port not initialized", p.logger.Field().String("action", "chord"))
		return []uint8{}, nil, contracts.ErrPortNotSelected
	}

	pitches, err := chord.Expand(int(root), chordType)
	if err != nil {
		p.logger.Warn("Unknown chord type",
			p.logger.Field().String("chord", chordType),
			p.logger.Field().Uint8("root", root))
		return pitches, nil, err
	}

	vel := velocity.Byte()
	var task *scheduler.Task
	if duration > 0 && len(pitches) > 0 {
		task = scheduler.NewTask(p.clock)
	}
	played := make([]uint8, 0, len(pitches))
	for _, pitch := range pitches {
		if err := p.enc.NoteOn(pitch, vel, channel); err != nil {
			return played, task, err
		}
		played = append(played, pitch)
		if p.track {
			p.active.Add(channel, pitch)
		}
		if task != nil {
			task.After(duration, p.releaser(pitch, channel))
		}
	}

	name, _ := chord.Resolve(chordType)
	p.logger.Info("Chord "+strings.ToUpper(name),
		p.logger.Field().Uint8("root", root),
		p.logger.Field().String("notes", chord.Label(played)),
		p.logger.Field().Uint8("channel", channel),
		p.logger.Field().Duration("duration", duration))
	return played, task, nil
}

// PlayNote turns one note on. A positive duration schedules its note-off
// and the returned task can cancel it.
func (p *Player) PlayNote(pitch uint8, velocity encoder.Velocity, channel uint8, duration time.Duration) (*scheduler.Task, error) {
	if err := p.enc.NoteOn(pitch, velocity.Byte(), channel); err != nil {
		return nil, err
	}
	if p.track {
		p.active.Add(channel, pitch)
	}
	if duration <= 0 {
		return nil, nil
	}
	task := scheduler.NewTask(p.clock)
	task.After(duration, p.releaser(pitch, channel))
	return task, nil
}

// StopNote turns one note off. With tracking on, an untracked note is left alone.
func (p *Player) StopNote(pitch, channel uint8) error {
	if p.track && !p.active.Contains(channel, pitch) {
		p.logger.Debug("Note not active", p.logger.Field().Uint8("pitch", pitch), p.logger.Field().Uint8("channel", channel))
		return nil
	}
	if err := p.enc.NoteOff(pitch, channel); err != nil {
		return err
	}
	p.active.Remove(channel, pitch)
	return nil
}

func (p *Player) releaser(pitch, channel uint8) func() {
	return func() {
		if p.track && !p.active.Remove(channel, pitch) {
			return
		}
		if err := p.enc.NoteOff(pitch, channel); err != nil && !errors.Is(err, contracts.ErrPortNotSelected) {
			p.logger.Error("Scheduled note off failed", p.logger.Field().Error("error", err))
		}
	}
}

// ReleaseAll sends a note-off for every tracked note, oldest first, and
// empties the set. It returns the number of note-offs sent.
func (p *Player) ReleaseAll() (int, error) {
	if !p.enc.Ready() {
		p.logger.Warn("Port not initialized", p.logger.Field().String("action", "release"))
		return 0, contracts.ErrPortNotSelected
	}
	keys := p.active.Drain()
	sent := 0
	var firstErr error
	for _, k := range keys {
		if err := p.enc.NoteOff(k.Pitch, k.Channel); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		sent++
	}
	p.logger.Info("Released all active notes", p.logger.Field().Int("count", sent))
	return sent, firstErr
}

// Active returns the tracker the player records into.
func (p *Player) Active() *tracker.Tracker {
	return p.active
}
