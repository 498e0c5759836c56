package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrappedLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.Info("Note On",
		log.Field().Uint8("pitch", 60),
		log.Field().Bytes("frame", []byte{0x90, 0x3C, 0x64}),
		log.Field().Error("error", errors.New("boom")))

	entries := logs.FilterMessage("Note On").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, uint8(60), ctx["pitch"])
	assert.Equal(t, "90 3C 64", ctx["frame"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestSetLevelFilters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.Debug("hidden")
	log.SetLevel(contracts.DebugLevel)
	log.Debug("shown")
	log.SetLevel(contracts.ErrorLevel)
	log.Warn("hidden too")
	log.Error("kept")

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"shown", "kept"}, msgs)
}

func TestWriterLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf)

	log.Info("Transport: START")
	assert.Contains(t, buf.String(), "Transport: START")
	assert.Contains(t, buf.String(), "INFO")
}

func TestSetDestinationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harness.log")
	log := NewStandardLogger()
	log.SetDestination(contracts.FileLog, path)
	log.Warn("Port not initialized")
	require.NoError(t, log.(*ZapLogger).Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Port not initialized")
}

func TestParseLogLevel(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    contracts.LogLevel
		wantErr bool
	}{
		{in: "", want: contracts.InfoLevel},
		{in: "DEBUG", want: contracts.DebugLevel},
		{in: " warn ", want: contracts.WarnLevel},
		{in: "error", want: contracts.ErrorLevel},
		{in: "loud", wantErr: true},
	} {
		got, err := contracts.ParseLogLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
