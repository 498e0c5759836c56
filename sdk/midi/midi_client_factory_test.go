package midi

import (
	"context"
	"testing"
	"time"

	"github.com/leandrodaf/midiharness/internal/fakemidi"
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withFakeGoMIDI(t *testing.T, c contracts.ClientMIDI) {
	t.Helper()
	prev := gomidiInitializer
	gomidiInitializer = func(*contracts.ClientOptions) (contracts.ClientMIDI, error) { return c, nil }
	t.Cleanup(func() { gomidiInitializer = prev })
}

func testOptions(t *testing.T, opts ...contracts.Option) contracts.ClientOptions {
	t.Helper()
	options, err := applyDefaultOptions(append([]contracts.Option{contracts.WithLogger(logger.New(zap.NewNop()))}, opts...)...)
	require.NoError(t, err)
	return options
}

func TestBackendSelection(t *testing.T) {
	fake := fakemidi.NewClient("loopMIDI Port")
	withFakeGoMIDI(t, fake)

	opts := testOptions(t)
	c, err := newClient(&opts, "linux")
	require.NoError(t, err)
	assert.Same(t, fake, c)

	opts = testOptions(t, contracts.WithBackend(contracts.BackendGoMIDI))
	c, err = newClient(&opts, "darwin")
	require.NoError(t, err)
	assert.Same(t, fake, c)

	opts = testOptions(t, contracts.WithBackend(contracts.BackendNative))
	_, err = newClient(&opts, "linux")
	assert.ErrorIs(t, err, ErrUnsupportedOS)
	assert.ErrorIs(t, err, contracts.ErrNotSupported)

	opts = testOptions(t, contracts.WithBackend("jack"))
	_, err = newClient(&opts, "linux")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestDefaultOptions(t *testing.T) {
	opts := testOptions(t)
	assert.Equal(t, contracts.BackendAuto, opts.Backend)
	assert.Equal(t, contracts.DefaultPortMatchers, opts.PortMatchers)
	assert.Equal(t, 3*time.Second, opts.AccessTimeout)
	assert.Equal(t, "Output Port", opts.CoreMIDIConfig.PortName)

	opts = testOptions(t,
		contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: "bench"}),
		contracts.WithPortMatchers("Virtual"),
		contracts.WithAccessTimeout(time.Second),
	)
	assert.Equal(t, "bench", opts.CoreMIDIConfig.ClientName)
	assert.Equal(t, "Output Port", opts.CoreMIDIConfig.PortName)
	assert.Equal(t, []string{"Virtual"}, opts.PortMatchers)
	assert.Equal(t, time.Second, opts.AccessTimeout)
}

func TestNewSessionUsesOptions(t *testing.T) {
	fake := fakemidi.NewClient("Microsoft GS Wavetable Synth", "My Virtual Bus")
	withFakeGoMIDI(t, fake)

	s, err := NewSession(
		contracts.WithLogger(logger.New(zap.NewNop())),
		contracts.WithBackend(contracts.BackendGoMIDI),
		contracts.WithPortMatchers("Virtual"),
	)
	require.NoError(t, err)

	_, err = s.RequestAccess(context.Background())
	require.NoError(t, err)
	p, err := s.SelectVirtual()
	require.NoError(t, err)
	assert.Equal(t, "My Virtual Bus", p.Name())

	require.NoError(t, s.Close())
	assert.True(t, fake.Stopped())
}
