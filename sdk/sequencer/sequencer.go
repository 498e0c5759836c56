// Package sequencer plays chord progressions as steps separated by fixed
// gaps. A gap is measured from the moment a step starts, so chords may
// still be sounding when the next step begins.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/scheduler"
)

// ChordPlayer plays one chord on a 0-based channel. Both the byte-API
// player and the channel API implement it.
type ChordPlayer interface {
	PlayChord(root uint8, chordType string, channel uint8, velocity encoder.Velocity, duration time.Duration) ([]uint8, error)
}

// ChordCue is one chord inside a step.
type ChordCue struct {
	RootOffset int // semitones added to the sequence root
	Type       string
	Channel    uint8
	Velocity   encoder.Velocity
	Duration   time.Duration
}

// Step plays its chords together, then waits Gap before the next step.
type Step struct {
	Label  string
	Chords []ChordCue
	Gap    time.Duration
}

// Sequence is a named, ordered list of steps around a root pitch.
type Sequence struct {
	Name  string
	Root  int
	Steps []Step
}

// Duration is the sum of all gaps.
func (s Sequence) Duration() time.Duration {
	var d time.Duration
	for _, st := range s.Steps {
		d += st.Gap
	}
	return d
}

// StepLog receives the human-readable step trail of a run.
type StepLog interface {
	Reset()
	Log(message string)
}

type loggerStepLog struct {
	logger contracts.Logger
}

func (l loggerStepLog) Reset() {}

func (l loggerStepLog) Log(message string) {
	l.logger.Info(message, l.logger.Field().String("log", "sequence"))
}

// Sequencer runs sequences against a ChordPlayer.
type Sequencer struct {
	player   ChordPlayer
	clock    scheduler.Clock
	logger   contracts.Logger
	steps    StepLog
	layering bool
	running  atomic.Int32
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock replaces the wall clock used for gaps.
func WithClock(c scheduler.Clock) Option {
	return func(s *Sequencer) { s.clock = c }
}

// WithStepLog sends the step trail somewhere other than the logger.
func WithStepLog(l StepLog) Option {
	return func(s *Sequencer) { s.steps = l }
}

// WithLayering allows several sequences to run at once.
func WithLayering(on bool) Option {
	return func(s *Sequencer) { s.layering = on }
}

// New creates a Sequencer.
func New(player ChordPlayer, logger contracts.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		player: player,
		clock:  scheduler.Real(),
		logger: logger,
		steps:  loggerStepLog{logger: logger},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Running reports how many sequences are in progress.
func (s *Sequencer) Running() int {
	return int(s.running.Load())
}

// acquire admits a run. The step trail is cleared only when nothing
// else is playing, so layered runs share one trail.
func (s *Sequencer) acquire() bool {
	if s.layering {
		if s.running.Add(1) == 1 {
			s.steps.Reset()
		}
		return true
	}
	if !s.running.CompareAndSwap(0, 1) {
		return false
	}
	s.steps.Reset()
	return true
}

// Run plays seq and blocks until it finishes or ctx is done. Unless
// layering is enabled, it fails with contracts.ErrSequenceRunning while
// another sequence is playing.
func (s *Sequencer) Run(ctx context.Context, seq Sequence) error {
	if !s.acquire() {
		s.logger.Warn("Sequence rejected", s.logger.Field().String("sequence", seq.Name))
		return contracts.ErrSequenceRunning
	}
	defer s.running.Add(-1)
	return s.run(ctx, seq)
}

func (s *Sequencer) run(ctx context.Context, seq Sequence) error {
	s.steps.Log("Starting " + seq.Name)

	for i, step := range seq.Steps {
		if err := ctx.Err(); err != nil {
			s.steps.Log("Sequence stopped")
			return err
		}
		s.steps.Log(step.Label)
		for _, cue := range step.Chords {
			if err := s.playCue(seq.Root, cue); err != nil {
				return err
			}
		}
		if step.Gap <= 0 {
			continue
		}
		if err := scheduler.Sleep(ctx, s.clock, step.Gap); err != nil {
			s.steps.Log("Sequence stopped")
			s.logger.Info("Sequence cancelled",
				s.logger.Field().String("sequence", seq.Name),
				s.logger.Field().Int("step", i))
			return err
		}
	}

	s.steps.Log("Sequence complete")
	return nil
}

func (s *Sequencer) playCue(root int, cue ChordCue) error {
	r := root + cue.RootOffset
	if r < 0 || r > 127 {
		s.logger.Warn("Chord root out of range",
			s.logger.Field().Int("root", r),
			s.logger.Field().String("chord", cue.Type))
		return nil
	}
	_, err := s.player.PlayChord(uint8(r), cue.Type, cue.Channel, cue.Velocity, cue.Duration)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, contracts.ErrPortNotSelected):
		return err
	default:
		s.logger.Warn("Chord skipped",
			s.logger.Field().String("chord", cue.Type),
			s.logger.Field().Error("error", err))
		return nil
	}
}

// Playback is a sequence running in the background.
type Playback struct {
	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
	err    error
}

// Cancel stops the sequence at its next gap. Notes already playing keep
// their scheduled note-offs.
func (p *Playback) Cancel() { p.cancel() }

// Done is closed when the sequence ends.
func (p *Playback) Done() <-chan struct{} { return p.done }

// Err returns the result of the run once Done is closed.
func (p *Playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the sequence ends and returns its result.
func (p *Playback) Wait() error {
	<-p.done
	return p.Err()
}

// Start runs seq on its own goroutine. Admission follows the same rule
// as Run and is decided before Start returns.
func (s *Sequencer) Start(ctx context.Context, seq Sequence) (*Playback, error) {
	if !s.acquire() {
		s.logger.Warn("Sequence rejected", s.logger.Field().String("sequence", seq.Name))
		return nil, fmt.Errorf("%w: %s", contracts.ErrSequenceRunning, seq.Name)
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Playback{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer cancel()
		defer s.running.Add(-1)
		err := s.run(ctx, seq)
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
	}()
	return p, nil
}
