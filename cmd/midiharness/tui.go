package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/scheduler"
	"github.com/leandrodaf/midiharness/sdk/sequencer"
)

const (
	paneLines     = 200
	noteLength    = 500 * time.Millisecond
	chordLength   = 1000 * time.Millisecond
	velocityStep  = 0.1
	modWheel      = 1
	defaultHeight = 24
)

func runTUI(c common, _ io.Writer) error {
	logs := newLines(paneLines)
	steps := newLines(paneLines)
	h, err := open(c, logger.NewWriterLogger(logs), withStepLog(steps))
	if err != nil {
		return err
	}
	defer h.close()

	m := newModel(h, logs, steps)
	m.connect()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type Model struct {
	h        *harness
	logs     *lines
	steps    *lines
	root     uint8
	chordIdx int
	channel  uint8
	velocity encoder.Velocity
	sustain  bool
	mod      bool
	playback *sequencer.Playback
	sweep    *scheduler.Task
	status   string
	height   int
	quitting bool
}

type logMsg struct{}

type stepMsg struct{}

func newModel(h *harness, logs, steps *lines) *Model {
	kind, ok := chord.Resolve(h.cfg.Chord.Type)
	idx := 0
	if ok {
		for i, t := range chord.Types() {
			if t == kind {
				idx = i
			}
		}
	}
	return &Model{
		h:        h,
		logs:     logs,
		steps:    steps,
		root:     h.cfg.Chord.Root,
		chordIdx: idx,
		channel:  h.cfg.Chord.Channel,
		velocity: encoder.Velocity(h.cfg.Chord.Velocity),
		height:   defaultHeight,
	}
}

func (m *Model) connect() {
	if err := m.h.connect(context.Background()); err != nil {
		m.status = "No output: " + err.Error()
		return
	}
	if info, ok := m.h.session.Selected(); ok {
		m.status = "Connected to " + info.Name
	}
}

func listenFor(l *lines, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-l.Changed()
		return msg
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listenFor(m.logs, logMsg{}),
		listenFor(m.steps, stepMsg{}),
	)
}

func (m *Model) chordType() string {
	return chord.Types()[m.chordIdx]
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case logMsg:
		return m, listenFor(m.logs, logMsg{})

	case stepMsg:
		return m, listenFor(m.steps, stepMsg{})
	}

	return m, nil
}

// handleKey performs the action bound to key and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	h := m.h
	report := func(err error) {
		if err != nil {
			m.status = "Error: " + err.Error()
		}
	}

	switch key {
	case "q", "ctrl+c":
		m.stopSequence()
		_, _ = h.player.ReleaseAll()
		m.remember()
		return true

	case "n":
		_, err := h.player.PlayNote(m.root, m.velocity, m.channel, noteLength)
		report(err)
	case "c":
		_, err := h.player.PlayChord(m.root, m.chordType(), m.channel, m.velocity, chordLength)
		report(err)
	case "C":
		_, err := h.out.PlayChord(m.root, m.chordType(), m.channel, m.velocity, chordLength)
		report(err)
	case "tab":
		m.chordIdx = (m.chordIdx + 1) % len(chord.Types())
	case "shift+tab":
		m.chordIdx = (m.chordIdx + len(chord.Types()) - 1) % len(chord.Types())

	case "up":
		if m.root < chord.MaxPitch {
			m.root++
		}
	case "down":
		if m.root > 0 {
			m.root--
		}
	case "right":
		m.velocity = encoder.Velocity(min(1, float64(m.velocity)+velocityStep))
	case "left":
		m.velocity = encoder.Velocity(max(0, float64(m.velocity)-velocityStep))
	case "]":
		m.channel = (m.channel + 1) % 16
	case "[":
		m.channel = (m.channel + 15) % 16

	case "s":
		var err error
		if m.sustain {
			err = h.enc.SustainOff(m.channel)
		} else {
			err = h.enc.SustainOn(m.channel)
		}
		if err == nil {
			m.sustain = !m.sustain
		}
		report(err)
	case "m":
		var v uint8
		if !m.mod {
			v = 127
		}
		err := h.enc.ControlChange(modWheel, v, m.channel)
		if err == nil {
			m.mod = !m.mod
		}
		report(err)
	case "b":
		m.sweep.Cancel()
		m.sweep = sequencer.BendSweep(h.enc, h.clock, m.channel)
	case "r":
		m.sweep.Cancel()
		report(h.enc.ResetPitchBend(m.channel))

	case "p":
		report(h.enc.Transport(encoder.Start))
	case "o":
		report(h.enc.Transport(encoder.Stop))
	case "u":
		report(h.enc.Transport(encoder.Continue))

	case "1", "2", "3", "4":
		demos := sequencer.Demos()
		seq := demos[int(key[0]-'1')]
		pb, err := h.seq.Start(context.Background(), seq)
		if err != nil {
			report(err)
			break
		}
		m.playback = pb
	case "x":
		m.stopSequence()

	case "a":
		_, err := h.player.ReleaseAll()
		report(err)
		report(h.out.SendAllNotesOff())
	}
	return false
}

// remember stores the chord parameters as the new defaults.
func (m *Model) remember() {
	cfg := m.h.cfg
	cfg.Chord.Root = m.root
	cfg.Chord.Type = m.chordType()
	cfg.Chord.Velocity = float64(m.velocity)
	cfg.Chord.Channel = m.channel
	if err := m.h.save(); err != nil {
		m.h.log.Error("Saving settings failed", m.h.log.Field().Error("error", err))
	}
}

func (m *Model) stopSequence() {
	if m.playback != nil {
		m.playback.Cancel()
		m.playback = nil
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	paneStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)

	port := "no output"
	if info, ok := m.h.session.Selected(); ok {
		port = info.Name
	}
	header := headerStyle.Render(fmt.Sprintf("midiharness  %s  root:%d  chord:%s  ch:%d  vel:%.1f  sustain:%s",
		port, m.root, m.chordType(), m.channel+1, float64(m.velocity), onOff(m.sustain)))

	body := m.height - 8
	if body < 4 {
		body = 4
	}
	logPane := paneStyle.Width(72).Render("Log\n" + strings.Join(m.logs.Tail(body), "\n"))
	stepPane := paneStyle.Width(40).Render("Sequence\n" + strings.Join(m.steps.Tail(body), "\n"))

	help := dimStyle.Render("n:note c/C:chord tab:type ↑↓:root ←→:vel []:ch s:sustain m:mod b:sweep r:reset p/o/u:transport 1-4:demo x:stop a:all off q:quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.status,
		lipgloss.JoinHorizontal(lipgloss.Top, logPane, stepPane),
		help,
	)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
