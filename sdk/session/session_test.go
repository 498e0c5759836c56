package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/midiharness/internal/fakemidi"
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/internal/midi/midiport"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newSession(t *testing.T, client contracts.ClientMIDI, opts ...Option) (*Session, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return New(client, logger.New(zap.New(core)), opts...), logs
}

func TestRequestAccessAndSelectVirtual(t *testing.T) {
	client := fakemidi.NewClient("Microsoft GS Wavetable Synth", "loopMIDI Port", "IAC Driver Bus 1")
	s, logs := newSession(t, client)

	devices, err := s.RequestAccess(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, 1, logs.FilterMessage("MIDI access granted").Len())
	assert.Equal(t, 3, logs.FilterMessage("Available MIDI output").Len())

	port, err := s.SelectVirtual()
	require.NoError(t, err)
	assert.Equal(t, "loopMIDI Port", port.Name())

	info, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, "fake-1", info.ID)
}

func TestSelectVirtualNotFound(t *testing.T) {
	s, logs := newSession(t, fakemidi.NewClient("USB Keyboard"))
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	_, err = s.SelectVirtual()
	assert.ErrorIs(t, err, contracts.ErrNoOutputFound)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Virtual MIDI port not found").Len())
	_, ok := s.Port()
	assert.False(t, ok)
}

func TestCustomMatchers(t *testing.T) {
	s, _ := newSession(t, fakemidi.NewClient("loopMIDI Port", "Bitwig Bus"), WithPortMatchers("Bitwig"))
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	port, err := s.SelectVirtual()
	require.NoError(t, err)
	assert.Equal(t, "Bitwig Bus", port.Name())
}

func TestReselectClosesPrevious(t *testing.T) {
	client := fakemidi.NewClient("a", "b")
	s, _ := newSession(t, client)
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	first, err := s.Select("fake-0")
	require.NoError(t, err)
	second, err := s.Select("fake-1")
	require.NoError(t, err)

	opened := client.Opened()
	require.Len(t, opened, 2)
	assert.True(t, opened[0].Closed())
	assert.False(t, opened[1].Closed())

	current, ok := s.Port()
	require.True(t, ok)
	assert.Same(t, second, current)
	assert.NotSame(t, first, current)
}

func TestReselectReleasesNotesOnPreviousPort(t *testing.T) {
	client := fakemidi.NewClient("a", "b")
	s, _ := newSession(t, client)
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	_, err = s.Select("fake-0")
	require.NoError(t, err)
	require.NoError(t, s.Send([]byte{0x90, 60, 100}))
	s.Active().Add(0, 60)
	require.NoError(t, s.Send([]byte{0x93, 67, 100}))
	s.Active().Add(3, 67)

	_, err = s.Select("fake-1")
	require.NoError(t, err)
	assert.Zero(t, s.Active().Len())

	opened := client.Opened()
	require.Len(t, opened, 2)
	assert.Equal(t, [][]byte{{0x90, 60, 100}, {0x93, 67, 100}, {0x80, 60, 0}, {0x83, 67, 0}}, opened[0].Frames())
	assert.Empty(t, opened[1].Frames())
}

func TestReselectSameGomidiOutput(t *testing.T) {
	out := &fakemidi.Out{Num: 0, Name: "loopMIDI Port"}
	client := midiport.NewWithLister(logger.New(zap.NewNop()), func() []drivers.Out { return []drivers.Out{out} })
	s, _ := newSession(t, client)
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	_, err = s.Select("gomidi-0")
	require.NoError(t, err)
	_, err = s.Select("gomidi-0")
	require.NoError(t, err)

	require.NoError(t, s.Send([]byte{0x90, 60, 100}))
	assert.True(t, out.IsOpen())
	assert.Equal(t, [][]byte{{0x90, 60, 100}}, out.Sent())

	require.NoError(t, s.Close())
	assert.False(t, out.IsOpen())
}

func TestSelectUnknownID(t *testing.T) {
	s, _ := newSession(t, fakemidi.NewClient("a"))
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)

	_, err = s.Select("nope")
	assert.ErrorIs(t, err, contracts.ErrDeviceNotFound)

	_, err = s.SelectName("A")
	assert.NoError(t, err)
}

func TestRequestAccessFailures(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, _ := newSession(t, fakemidi.NewClient())
		_, err := s.RequestAccess(context.Background())
		assert.ErrorIs(t, err, contracts.ErrNoOutputFound)

		_, err = s.SelectFirst()
		assert.ErrorIs(t, err, contracts.ErrNoOutputFound)
	})

	t.Run("backend error", func(t *testing.T) {
		client := fakemidi.NewClient("a")
		client.ListErr = errors.New("permission denied")
		s, _ := newSession(t, client)
		_, err := s.RequestAccess(context.Background())
		assert.ErrorIs(t, err, contracts.ErrDeviceAccessDenied)
	})

	t.Run("not supported", func(t *testing.T) {
		client := fakemidi.NewClient("a")
		client.ListErr = contracts.ErrNotSupported
		s, _ := newSession(t, client)
		_, err := s.RequestAccess(context.Background())
		assert.ErrorIs(t, err, contracts.ErrNotSupported)
		assert.NotErrorIs(t, err, contracts.ErrDeviceAccessDenied)
	})

	t.Run("hung enumeration", func(t *testing.T) {
		client := fakemidi.NewClient("a")
		client.Block = make(chan struct{})
		defer close(client.Block)
		s, _ := newSession(t, client, WithAccessTimeout(20*time.Millisecond))
		_, err := s.RequestAccess(context.Background())
		assert.ErrorIs(t, err, contracts.ErrDeviceAccessDenied)
	})
}

func TestSendWithoutPort(t *testing.T) {
	s, logs := newSession(t, fakemidi.NewClient("a"))
	assert.ErrorIs(t, s.Send([]byte{0xFA}), contracts.ErrPortNotSelected)
	assert.Equal(t, 1, logs.FilterMessage("Port not initialized").Len())
}

func TestResetAndClose(t *testing.T) {
	client := fakemidi.NewClient("a")
	s, _ := newSession(t, client)
	_, err := s.RequestAccess(context.Background())
	require.NoError(t, err)
	_, err = s.SelectFirst()
	require.NoError(t, err)
	require.NoError(t, s.Send([]byte{0xFA}))

	s.Active().Add(0, 60)
	require.NoError(t, s.Close())

	_, ok := s.Port()
	assert.False(t, ok)
	assert.Zero(t, s.Active().Len())
	assert.True(t, client.Opened()[0].Closed())
	assert.True(t, client.Stopped())
	assert.Equal(t, [][]byte{{0xFA}}, client.Opened()[0].Frames())
}
