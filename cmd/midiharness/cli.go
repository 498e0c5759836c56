package main

import (
	"fmt"
	"io"

	config "gitlab.com/metakeule/config"

	settings "github.com/leandrodaf/midiharness/internal/config"
	"github.com/leandrodaf/midiharness/sdk/chord"
)

// command is a subcommand and the action bound to it.
type command struct {
	cfg *config.Config
	run func(stdout io.Writer) error
}

// newCLI declares the application and its subcommands. Values live in the
// returned configs, so every call starts from a clean slate.
func newCLI() (*config.Config, []command) {
	app := config.MustNew("midiharness", version, "MIDI test harness")
	return app, []command{
		listCommand(app),
		noteCommand(app),
		chordCommand(app),
		ccCommand(app),
		sustainCommand(app),
		bendCommand(app),
		transportCommand(app),
		sequenceCommand(app),
		allOffCommand(app),
		tuiCommand(app),
	}
}

// common holds the options every subcommand accepts.
type common struct {
	settings config.StringGetter
	port     config.StringGetter
	backend  config.StringGetter
	logLevel config.StringGetter
	logFile  config.StringGetter
}

func addCommon(cmd *config.Config) common {
	return common{
		settings: cmd.NewString("settings", "settings file (default ~/.config/midiharness/config.json)", config.Shortflag('s')),
		port:     cmd.NewString("port", "output name fragment; empty selects a loopMIDI/IAC port", config.Shortflag('p')),
		backend:  cmd.NewString("backend", "auto, native or gomidi"),
		logLevel: cmd.NewString("loglevel", "debug, info, warn or error"),
		logFile:  cmd.NewString("logfile", "append logs to this file"),
	}
}

// path is the settings file in use.
func (c common) path() (string, error) {
	if p := c.settings.Get(); p != "" {
		return p, nil
	}
	return settings.ConfigPath()
}

// load reads the settings file and applies option overrides.
func (c common) load() (*settings.Config, error) {
	var (
		cfg *settings.Config
		err error
	)
	if p := c.settings.Get(); p != "" {
		cfg, err = settings.LoadFrom(p)
	} else {
		cfg, err = settings.Load()
	}
	if err != nil {
		return nil, err
	}
	if v := c.port.Get(); v != "" {
		cfg.PortName = v
	}
	if v := c.backend.Get(); v != "" {
		cfg.Backend = v
	}
	if v := c.logLevel.Get(); v != "" {
		cfg.LogLevel = v
	}
	if v := c.logFile.Get(); v != "" {
		cfg.LogFile = v
	}
	return cfg, nil
}

func listCommand(app *config.Config) command {
	cmd := app.MustCommand("list", "list MIDI outputs")
	c := addCommon(cmd)
	return command{cmd, func(stdout io.Writer) error { return runList(c, stdout) }}
}

func noteCommand(app *config.Config) command {
	cmd := app.MustCommand("note", "play one note")
	o := noteOptions{
		common:   addCommon(cmd),
		pitch:    cmd.NewInt32("pitch", "MIDI note 0-127 (default from settings)", config.Shortflag('n')),
		velocity: cmd.NewInt32("velocity", "velocity 0-127 (default from settings)", config.Shortflag('v')),
		channel:  cmd.NewInt32("channel", "channel 0-15 (default from settings)", config.Shortflag('c')),
		duration: cmd.NewInt32("duration", "note length in milliseconds (default from settings)", config.Shortflag('d')),
		hold:     cmd.NewBool("hold", "send note on only"),
		off:      cmd.NewBool("off", "send note off only"),
	}
	return command{cmd, func(io.Writer) error { return runNote(o) }}
}

func chordCommand(app *config.Config) command {
	cmd := app.MustCommand("chord", "play a chord")
	o := chordOptions{
		common:   addCommon(cmd),
		root:     cmd.NewInt32("root", "root note 0-127 (default from settings)", config.Shortflag('r')),
		kind:     cmd.NewString("type", fmt.Sprintf("one of %v or an alias (default from settings)", chord.Types()), config.Shortflag('t')),
		velocity: cmd.NewFloat32("velocity", "velocity 0.0-1.0 (default from settings)", config.Shortflag('v')),
		channel:  cmd.NewInt32("channel", "channel 0-15 (default from settings)", config.Shortflag('c')),
		duration: cmd.NewInt32("duration", "chord length in milliseconds (default from settings)", config.Shortflag('d')),
		api:      cmd.NewString("api", "byte or channel", config.Default("byte")),
	}
	return command{cmd, func(io.Writer) error { return runChord(o) }}
}

func ccCommand(app *config.Config) command {
	cmd := app.MustCommand("cc", "send a control change")
	o := ccOptions{
		common:     addCommon(cmd),
		controller: cmd.NewInt32("controller", "controller number 0-127", config.Default(int32(1))),
		value:      cmd.NewInt32("value", "value 0-127", config.Default(int32(64))),
		channel:    cmd.NewInt32("channel", "channel 0-15", config.Default(int32(0)), config.Shortflag('c')),
	}
	return command{cmd, func(io.Writer) error { return runCC(o) }}
}

func sustainCommand(app *config.Config) command {
	cmd := app.MustCommand("sustain", "sustain pedal on or off")
	o := sustainOptions{
		common:  addCommon(cmd),
		state:   cmd.NewString("state", "on or off", config.Default("on")),
		channel: cmd.NewInt32("channel", "channel 0-15", config.Default(int32(0)), config.Shortflag('c')),
	}
	return command{cmd, func(io.Writer) error { return runSustain(o) }}
}

func bendCommand(app *config.Config) command {
	cmd := app.MustCommand("bend", "send pitch bend")
	o := bendOptions{
		common:  addCommon(cmd),
		value:   cmd.NewInt32("value", "raw bend value, -8192 to 8191", config.Default(int32(0))),
		mode:    cmd.NewString("mode", "value, reset or sweep", config.Default("value")),
		channel: cmd.NewInt32("channel", "channel 0-15", config.Default(int32(0)), config.Shortflag('c')),
	}
	return command{cmd, func(io.Writer) error { return runBend(o) }}
}

func transportCommand(app *config.Config) command {
	cmd := app.MustCommand("transport", "send a transport message")
	o := transportOptions{
		common: addCommon(cmd),
		action: cmd.NewString("action", "start, stop or continue", config.Required),
	}
	return command{cmd, func(io.Writer) error { return runTransport(o) }}
}

func sequenceCommand(app *config.Config) command {
	cmd := app.MustCommand("sequence", "play a demo sequence")
	o := sequenceOptions{
		common: addCommon(cmd),
		name:   cmd.NewString("name", "progression, turnaround, multichannel or velocity", config.Default("progression")),
		api:    cmd.NewString("api", "byte or channel", config.Default("byte")),
	}
	return command{cmd, func(stdout io.Writer) error { return runSequence(o, stdout) }}
}

func allOffCommand(app *config.Config) command {
	cmd := app.MustCommand("alloff", "release tracked notes and send All Notes Off on every channel")
	c := addCommon(cmd)
	return command{cmd, func(io.Writer) error { return runAllOff(c) }}
}

func tuiCommand(app *config.Config) command {
	cmd := app.MustCommand("tui", "interactive mode")
	c := addCommon(cmd)
	return command{cmd, func(stdout io.Writer) error { return runTUI(c, stdout) }}
}

// getter is an option that may have been left unset.
type getter[T any] interface {
	Get() T
	IsSet() bool
}

// orSetting returns the option value when it was given, def otherwise.
func orSetting[T any](g getter[T], def T) T {
	if g.IsSet() {
		return g.Get()
	}
	return def
}
