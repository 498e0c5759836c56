//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

type dummyMIDIClient struct {
	logger contracts.Logger
}

// NewMIDIClient initializes a dummy MIDI client for non-Windows systems.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("Using dummy MIDI client for non-Windows system")
	return &dummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *dummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy winmm client")
	return nil, fmt.Errorf("%w: winmm is only available on Windows", contracts.ErrNotSupported)
}

func (m *dummyMIDIClient) SelectDevice(deviceID int) (contracts.Port, error) {
	m.logger.Warn("SelectDevice called on dummy winmm client", m.logger.Field().Int("deviceID", deviceID))
	return nil, fmt.Errorf("%w: winmm is only available on Windows", contracts.ErrNotSupported)
}

func (m *dummyMIDIClient) Stop() error {
	m.logger.Debug("Stop called on dummy winmm client")
	return nil
}
