package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	settings "github.com/leandrodaf/midiharness/internal/config"
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/channels"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/midi"
	"github.com/leandrodaf/midiharness/sdk/player"
	"github.com/leandrodaf/midiharness/sdk/scheduler"
	"github.com/leandrodaf/midiharness/sdk/sequencer"
	"github.com/leandrodaf/midiharness/sdk/session"
)

// settle is added to waits so note-offs scheduled for the same instant fire first.
const settle = 50 * time.Millisecond

// openSession builds the session; tests replace it.
var openSession = midi.NewSession

// newLogger builds the console logger; tests replace it.
var newLogger = logger.NewStandardLogger

// harness wires one session to every way of sending.
type harness struct {
	cfg     *settings.Config
	path    string
	log     contracts.Logger
	clock   scheduler.Clock
	session *session.Session
	enc     *encoder.Encoder
	player  *player.Player
	out     *channels.Output
	seq     *sequencer.Sequencer
}

type harnessOption func(*harnessOptions)

type harnessOptions struct {
	clock scheduler.Clock
	steps sequencer.StepLog
}

func withClock(c scheduler.Clock) harnessOption {
	return func(o *harnessOptions) { o.clock = c }
}

func withStepLog(l sequencer.StepLog) harnessOption {
	return func(o *harnessOptions) { o.steps = l }
}

func newHarness(cfg *settings.Config, s *session.Session, log contracts.Logger, opts ...harnessOption) *harness {
	o := harnessOptions{clock: scheduler.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	enc := encoder.New(s, log)
	h := &harness{
		cfg:     cfg,
		log:     log,
		clock:   o.clock,
		session: s,
		enc:     enc,
		player:  player.New(enc, s.Active(), log, player.WithClock(o.clock)),
		out:     channels.NewOutput(s, log, channels.WithClock(o.clock)),
	}
	seqOpts := []sequencer.Option{sequencer.WithClock(o.clock), sequencer.WithLayering(cfg.AllowOverlap)}
	if o.steps != nil {
		seqOpts = append(seqOpts, sequencer.WithStepLog(o.steps))
	}
	h.seq = sequencer.New(h.player, log, seqOpts...)
	return h
}

// open loads configuration and builds a harness around a fresh session.
func open(c common, log contracts.Logger, opts ...harnessOption) (*harness, error) {
	cfg, err := c.load()
	if err != nil {
		return nil, err
	}
	clientOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	s, err := openSession(append(clientOpts, contracts.WithLogger(log))...)
	if err != nil {
		return nil, err
	}
	h := newHarness(cfg, s, log, opts...)
	// without a home directory the settings are not saved
	h.path, _ = c.path()
	return h, nil
}

// connect enumerates outputs and selects one: the configured name if
// set, else a virtual port, else the first output.
func (h *harness) connect(ctx context.Context) error {
	if _, err := h.session.RequestAccess(ctx); err != nil {
		return err
	}
	if h.cfg.PortName != "" {
		_, err := h.session.SelectName(h.cfg.PortName)
		return err
	}
	_, err := h.session.SelectVirtual()
	if errors.Is(err, contracts.ErrNoOutputFound) {
		h.log.Warn("Falling back to the first output")
		_, err = h.session.SelectFirst()
	}
	return err
}

// wait blocks until scheduled note-offs up to d have fired.
func (h *harness) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return scheduler.Sleep(ctx, h.clock, d+settle)
}

// chordPlayer picks the byte API or the channel API.
func (h *harness) chordPlayer(api string) (sequencer.ChordPlayer, error) {
	switch api {
	case "", "byte":
		return h.player, nil
	case "channel":
		return h.out, nil
	default:
		return nil, fmt.Errorf("unknown api %q: want byte or channel", api)
	}
}

// save writes the settings back to the file they came from.
func (h *harness) save() error {
	if h.path == "" {
		return nil
	}
	return h.cfg.SaveTo(h.path)
}

func (h *harness) close() error {
	return h.session.Close()
}
