package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	config "gitlab.com/metakeule/config"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/sequencer"
)

type noteOptions struct {
	common
	pitch, velocity, channel, duration config.Int32Getter
	hold, off                          config.BoolGetter
}

type chordOptions struct {
	common
	root, channel, duration config.Int32Getter
	kind, api               config.StringGetter
	velocity                config.Float32Getter
}

type ccOptions struct {
	common
	controller, value, channel config.Int32Getter
}

type sustainOptions struct {
	common
	state   config.StringGetter
	channel config.Int32Getter
}

type bendOptions struct {
	common
	value, channel config.Int32Getter
	mode           config.StringGetter
}

type transportOptions struct {
	common
	action config.StringGetter
}

type sequenceOptions struct {
	common
	name, api config.StringGetter
}

// withHarness runs fn against a connected harness and closes it afterwards.
func withHarness(c common, fn func(ctx context.Context, h *harness) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h, err := open(c, newLogger())
	if err != nil {
		return err
	}
	defer h.close()

	if err := h.connect(ctx); err != nil {
		return err
	}
	return fn(ctx, h)
}

func runList(c common, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	h, err := open(c, newLogger())
	if err != nil {
		return err
	}
	defer h.close()

	devices, err := h.session.RequestAccess(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "=== MIDI Output Ports ===")
	for _, d := range devices {
		fmt.Fprintf(stdout, "  %d: %s (%s)\n", d.Index, d.Name, d.ID)
	}
	return nil
}

func runNote(o noteOptions) error {
	return withHarness(o.common, func(ctx context.Context, h *harness) error {
		p, err := data7("pitch", orSetting(o.pitch, int32(h.cfg.Note.Pitch)))
		if err != nil {
			return err
		}
		ch, err := nibble("channel", orSetting(o.channel, int32(h.cfg.Note.Channel)))
		if err != nil {
			return err
		}
		if o.off.Get() {
			return h.enc.NoteOff(p, ch)
		}
		v, err := data7("velocity", orSetting(o.velocity, int32(h.cfg.Note.Velocity)))
		if err != nil {
			return err
		}
		d := millis(orSetting(o.duration, int32(h.cfg.Note.DurationMS)))
		if o.hold.Get() {
			d = 0
		}
		if _, err := h.player.PlayNote(p, encoder.VelocityFromByte(v), ch, d); err != nil {
			return err
		}
		return h.wait(ctx, d)
	})
}

func runChord(o chordOptions) error {
	return withHarness(o.common, func(ctx context.Context, h *harness) error {
		player, err := h.chordPlayer(o.api.Get())
		if err != nil {
			return err
		}
		r, err := data7("root", orSetting(o.root, int32(h.cfg.Chord.Root)))
		if err != nil {
			return err
		}
		ch, err := nibble("channel", orSetting(o.channel, int32(h.cfg.Chord.Channel)))
		if err != nil {
			return err
		}
		kind := orSetting(o.kind, h.cfg.Chord.Type)
		vel := encoder.Velocity(orSetting(o.velocity, float32(h.cfg.Chord.Velocity)))
		d := millis(orSetting(o.duration, int32(h.cfg.Chord.DurationMS)))
		if _, err := player.PlayChord(r, kind, ch, vel, d); err != nil {
			return err
		}
		return h.wait(ctx, d)
	})
}

func runCC(o ccOptions) error {
	ctl, err := data7("controller", o.controller.Get())
	if err != nil {
		return err
	}
	val, err := data7("value", o.value.Get())
	if err != nil {
		return err
	}
	ch, err := nibble("channel", o.channel.Get())
	if err != nil {
		return err
	}
	return withHarness(o.common, func(_ context.Context, h *harness) error {
		return h.enc.ControlChange(ctl, val, ch)
	})
}

func runSustain(o sustainOptions) error {
	var on bool
	switch s := o.state.Get(); s {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("sustain: want on or off, got %q", s)
	}
	ch, err := nibble("channel", o.channel.Get())
	if err != nil {
		return err
	}
	return withHarness(o.common, func(_ context.Context, h *harness) error {
		if on {
			return h.enc.SustainOn(ch)
		}
		return h.enc.SustainOff(ch)
	})
}

func runBend(o bendOptions) error {
	ch, err := nibble("channel", o.channel.Get())
	if err != nil {
		return err
	}
	mode := o.mode.Get()
	switch mode {
	case "value", "reset", "sweep":
	default:
		return fmt.Errorf("bend: unknown mode %q", mode)
	}
	return withHarness(o.common, func(ctx context.Context, h *harness) error {
		switch mode {
		case "reset":
			return h.enc.ResetPitchBend(ch)
		case "sweep":
			task := sequencer.BendSweep(h.enc, h.clock, ch)
			if err := h.wait(ctx, time.Duration(sequencer.SweepSteps-1)*sequencer.SweepInterval); err != nil {
				task.Cancel()
				return err
			}
			return nil
		default:
			return h.enc.PitchBend(int(o.value.Get()), ch)
		}
	})
}

func runTransport(o transportOptions) error {
	t, err := encoder.ParseTransport(o.action.Get())
	if err != nil {
		return err
	}
	return withHarness(o.common, func(_ context.Context, h *harness) error {
		return h.enc.Transport(t)
	})
}

func runSequence(o sequenceOptions, stdout io.Writer) error {
	name := o.name.Get()
	seq, ok := sequencer.Demo(name)
	if !ok {
		for _, d := range sequencer.Demos() {
			fmt.Fprintf(stdout, "  %s (%s)\n", d.Name, d.Duration())
		}
		return fmt.Errorf("unknown sequence %q", name)
	}

	api := o.api.Get()
	return withHarness(o.common, func(ctx context.Context, h *harness) error {
		player, err := h.chordPlayer(api)
		if err != nil {
			return err
		}
		s := h.seq
		if api == "channel" {
			s = sequencer.New(player, h.log, sequencer.WithClock(h.clock))
		}
		if err := s.Run(ctx, seq); err != nil {
			return err
		}
		return h.wait(ctx, longestChord(seq))
	})
}

func runAllOff(c common) error {
	return withHarness(c, func(_ context.Context, h *harness) error {
		if _, err := h.player.ReleaseAll(); err != nil {
			return err
		}
		return h.out.SendAllNotesOff()
	})
}

func longestChord(seq sequencer.Sequence) time.Duration {
	var d time.Duration
	for _, st := range seq.Steps {
		for _, c := range st.Chords {
			if c.Duration > d {
				d = c.Duration
			}
		}
	}
	return d
}

func millis(ms int32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// data7 narrows an option to a 7-bit MIDI data byte.
func data7(name string, v int32) (uint8, error) {
	if v < 0 || v > 127 {
		return 0, fmt.Errorf("%w: %s %d not in 0-127", contracts.ErrOutOfRange, name, v)
	}
	return uint8(v), nil
}

// nibble narrows an option to a wire channel.
func nibble(name string, v int32) (uint8, error) {
	if v < 0 || v > 15 {
		return 0, fmt.Errorf("%w: %s %d not in 0-15", contracts.ErrOutOfRange, name, v)
	}
	return uint8(v), nil
}
