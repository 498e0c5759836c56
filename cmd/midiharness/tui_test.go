package main

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	settings "github.com/leandrodaf/midiharness/internal/config"
	"github.com/leandrodaf/midiharness/internal/fakemidi"
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *fakemidi.Client, *clockwork.FakeClock) {
	t.Helper()
	fake := fakemidi.NewClient("loopMIDI Port")
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	logs, steps := newLines(50), newLines(50)
	log := logger.NewWriterLogger(logs)

	h := newHarness(settings.DefaultConfig(), session.New(fake, log), log, withClock(clock), withStepLog(steps))
	h.path = filepath.Join(t.TempDir(), "config.json")
	m := newModel(h, logs, steps)
	m.connect()
	return m, fake, clock
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestModelChordAndRelease(t *testing.T) {
	m, fake, clock := newTestModel(t)
	assert.Equal(t, "Connected to loopMIDI Port", m.status)

	press(m, "c")
	port := fake.Opened()[0]
	assert.Equal(t, [][]byte{{0x90, 60, 89}, {0x90, 64, 89}, {0x90, 67, 89}}, port.Frames())
	assert.Equal(t, 3, m.h.session.Active().Len())

	clock.Advance(chordLength)
	assert.Eventually(t, func() bool { return len(port.Frames()) == 6 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return m.h.session.Active().Len() == 0 }, time.Second, time.Millisecond)
}

func TestModelParameters(t *testing.T) {
	m, fake, _ := newTestModel(t)

	press(m, "tab", "up", "]", "right")
	assert.Equal(t, chord.Minor, m.chordType())
	assert.Equal(t, uint8(61), m.root)
	assert.Equal(t, uint8(1), m.channel)
	assert.InDelta(t, 0.8, float64(m.velocity), 1e-9)

	press(m, "n", "s", "p")
	assert.Equal(t, [][]byte{{0x91, 61, 102}, {0xB1, 64, 127}, {0xFA}}, fake.Opened()[0].Frames())
	assert.True(t, m.sustain)
	assert.Contains(t, m.View(), "chord:minor")
}

func TestModelSequenceAndQuit(t *testing.T) {
	m, _, clock := newTestModel(t)

	press(m, "1")
	require.NotNil(t, m.playback)
	clock.BlockUntil(4)
	assert.Contains(t, m.steps.Tail(0), "Starting progression")

	press(m, "2")
	assert.Contains(t, m.status, "already running")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Zero(t, m.h.session.Active().Len())
	assert.Empty(t, m.View())
}

func TestModelQuitSavesChordSettings(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, "tab", "up", "up", "]", "right")
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	saved, err := settings.LoadFrom(m.h.path)
	require.NoError(t, err)
	assert.Equal(t, uint8(62), saved.Chord.Root)
	assert.Equal(t, chord.Minor, saved.Chord.Type)
	assert.Equal(t, uint8(1), saved.Chord.Channel)
	assert.InDelta(t, 0.8, saved.Chord.Velocity, 1e-9)
	assert.Equal(t, 500, saved.Note.DurationMS)

	h := newHarness(saved, m.h.session, m.h.log)
	next := newModel(h, m.logs, m.steps)
	assert.Equal(t, chord.Minor, next.chordType())
	assert.Equal(t, uint8(62), next.root)
}

func TestModelBendSweep(t *testing.T) {
	m, fake, clock := newTestModel(t)
	port := fake.Opened()[0]
	frames := func(n int) {
		require.Eventually(t, func() bool { return len(port.Frames()) == n }, time.Second, time.Millisecond)
	}

	press(m, "b")
	clock.Advance(time.Second)
	frames(9)

	press(m, "b")
	clock.Advance(150 * time.Millisecond)
	frames(9 + 2)
	press(m, "r")
	clock.Advance(time.Second)
	got := port.Frames()
	assert.Len(t, got, 9+2+1)
	assert.Equal(t, []byte{0xE0, 0, 0}, got[len(got)-1])
}

func TestModelWithoutOutput(t *testing.T) {
	fake := fakemidi.NewClient()
	logs, steps := newLines(10), newLines(10)
	log := logger.NewWriterLogger(logs)
	h := newHarness(settings.DefaultConfig(), session.New(fake, log), log)
	m := newModel(h, logs, steps)
	m.connect()
	assert.Contains(t, m.status, "No output")

	press(m, "c")
	assert.Contains(t, m.status, "port not initialized")
	assert.Contains(t, m.View(), "no output")
}

func TestLines(t *testing.T) {
	l := newLines(3)
	_, _ = l.Write([]byte("one\ntw"))
	_, _ = l.Write([]byte("o\nthree\nfour\n"))
	assert.Equal(t, []string{"two", "three", "four"}, l.Tail(0))
	assert.Equal(t, []string{"four"}, l.Tail(1))

	select {
	case <-l.Changed():
	default:
		t.Fatal("no change signalled")
	}

	l.Reset()
	l.Log("Starting velocity")
	assert.Equal(t, []string{"Starting velocity"}, l.Tail(0))
}
