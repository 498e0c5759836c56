package channels

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/leandrodaf/midiharness/internal/fakemidi"
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newOutput(t *testing.T, port contracts.Port) (*Output, *clockwork.FakeClock, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	return NewOutput(fakemidi.Source{P: port}, logger.New(zap.New(core)), WithClock(clock)), clock, logs
}

func TestChannelRange(t *testing.T) {
	out, _, _ := newOutput(t, fakemidi.NewPort("p"))
	for _, n := range []int{0, 17, -1} {
		_, err := out.Channel(n)
		assert.ErrorIs(t, err, contracts.ErrOutOfRange, "channel %d", n)
	}
	ch, err := out.Channel(16)
	require.NoError(t, err)
	assert.Equal(t, 16, ch.Number())
}

func TestPlayNoteWithDuration(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, clock, _ := newOutput(t, port)
	ch, err := out.Channel(2)
	require.NoError(t, err)

	require.NoError(t, ch.PlayNote(60, NoteOptions{Duration: 800 * time.Millisecond, Attack: 0.7}))
	frames := port.Frames()
	require.Len(t, frames, 1)

	var c, key, vel uint8
	require.True(t, midi.Message(frames[0]).GetNoteOn(&c, &key, &vel))
	assert.Equal(t, uint8(1), c)
	assert.Equal(t, uint8(60), key)
	assert.Equal(t, uint8(89), vel)

	clock.Advance(800 * time.Millisecond)
	require.Eventually(t, func() bool { return len(port.Frames()) == 2 }, time.Second, time.Millisecond)
	frames = port.Frames()
	assert.True(t, midi.Message(frames[1]).GetNoteOff(&c, &key, &vel))
	assert.Equal(t, uint8(60), key)
}

func TestPlayNoteDefaultsAndRejections(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, _, _ := newOutput(t, port)
	ch, _ := out.Channel(1)

	require.NoError(t, ch.PlayNote(64, NoteOptions{}))
	assert.Equal(t, []byte{0x90, 64, 64}, port.Frames()[0])

	assert.ErrorIs(t, ch.PlayNote(128, NoteOptions{}), contracts.ErrOutOfRange)
	assert.ErrorIs(t, ch.PlayNote(60, NoteOptions{Attack: 1.5}), contracts.ErrOutOfRange)
	assert.ErrorIs(t, ch.SendControlChange(128, 0), contracts.ErrOutOfRange)
	assert.ErrorIs(t, ch.SendPitchBend(9000), contracts.ErrOutOfRange)
	assert.Len(t, port.Frames(), 1)
}

func TestPitchBendIsCentered(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, _, _ := newOutput(t, port)
	ch, _ := out.Channel(1)

	require.NoError(t, ch.SendPitchBend(0))
	var c uint8
	var rel int16
	var abs uint16
	require.True(t, midi.Message(port.Frames()[0]).GetPitchBend(&c, &rel, &abs))
	assert.Equal(t, int16(0), rel)
	assert.Equal(t, uint16(8192), abs)
}

func TestSendAllNotesOff(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, _, logs := newOutput(t, port)

	require.NoError(t, out.SendAllNotesOff())
	frames := port.Frames()
	require.Len(t, frames, 16)
	for i, f := range frames {
		var c, cc, val uint8
		require.True(t, midi.Message(f).GetControlChange(&c, &cc, &val))
		assert.Equal(t, uint8(i), c)
		assert.Equal(t, uint8(123), cc)
		assert.Zero(t, val)
	}
	assert.Equal(t, 1, logs.FilterMessage("All notes off (all channels)").Len())
}

func TestTransport(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, _, _ := newOutput(t, port)

	require.NoError(t, out.Start())
	require.NoError(t, out.Stop())
	require.NoError(t, out.Continue())
	assert.Equal(t, [][]byte{{0xFA}, {0xFC}, {0xFB}}, port.Frames())
}

func TestPlayChord(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, clock, logs := newOutput(t, port)

	notes, err := out.PlayChord(62, "minor7", 0, 0.75, 900*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []uint8{62, 65, 69, 72}, notes)
	assert.Equal(t, 1, logs.FilterMessage("MINOR7").Len())
	clock.BlockUntil(4)

	clock.Advance(900 * time.Millisecond)
	assert.Eventually(t, func() bool { return len(port.Frames()) == 8 }, time.Second, time.Millisecond)
}

func TestNoOutputSelected(t *testing.T) {
	out, _, logs := newOutput(t, nil)
	_, err := out.PlayChord(60, "major", 0, 0.7, 0)
	assert.ErrorIs(t, err, contracts.ErrPortNotSelected)
	assert.ErrorIs(t, out.SendAllNotesOff(), contracts.ErrPortNotSelected)
	assert.Equal(t, 2, logs.FilterMessage("No output selected").Len())
}

func TestPlayChordUnknown(t *testing.T) {
	port := fakemidi.NewPort("p")
	out, _, _ := newOutput(t, port)
	notes, err := out.PlayChord(60, "blues", 0, 0.7, 0)
	assert.ErrorIs(t, err, contracts.ErrUnknownChordType)
	assert.Empty(t, notes)
	assert.Empty(t, port.Frames())
}
