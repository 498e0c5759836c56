//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

type DummyMIDIClient struct {
	logger contracts.Logger
}

func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("Using dummy MIDI client for non-macOS system")
	return &DummyMIDIClient{
		logger: options.Logger,
	}, nil
}

func (m *DummyMIDIClient) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy CoreMIDI client")
	return nil, fmt.Errorf("%w: CoreMIDI is only available on macOS", contracts.ErrNotSupported)
}

func (m *DummyMIDIClient) SelectDevice(deviceID int) (contracts.Port, error) {
	m.logger.Warn("SelectDevice called on dummy CoreMIDI client", m.logger.Field().Int("deviceID", deviceID))
	return nil, fmt.Errorf("%w: CoreMIDI is only available on macOS", contracts.ErrNotSupported)
}

func (m *DummyMIDIClient) Stop() error {
	m.logger.Debug("Stop called on dummy CoreMIDI client")
	return nil
}
