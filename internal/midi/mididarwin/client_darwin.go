//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI output handling.
var (
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrCreateOutputPort  = errors.New("error creating output port")
	ErrPortClosed        = errors.New("MIDI output port closed")
)

// ClientMid sends MIDI to CoreMIDI destinations on Darwin (macOS).
// One output port is shared by every destination the client opens.
type ClientMid struct {
	logger         contracts.Logger
	client         coremidi.Client           // CoreMIDI client instance.
	outputPort     coremidi.OutputPort       // Output port, created on first selection.
	hasOutputPort  bool                      // Whether outputPort has been created.
	coreMIDIConfig *contracts.CoreMIDIConfig // Configuration for MIDI client.
	opened         map[*destinationPort]struct{}
	mu             sync.Mutex // Guards the output port and the opened set.
	stopOnce       sync.Once  // Ensures Stop() is executed only once.
}

// NewMIDIClient initializes a CoreMIDI client for sending MIDI on macOS.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, err
	}
	options.Logger.Info("MIDI client successfully created")

	return &ClientMid{
		logger:         options.Logger,
		client:         client,
		coreMIDIConfig: options.CoreMIDIConfig,
		opened:         make(map[*destinationPort]struct{}),
	}, nil
}

// ListDevices returns the CoreMIDI destinations, including IAC buses.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		m.logger.Warn(contracts.ErrNoOutputFound.Error())
		return nil, contracts.ErrNoOutputFound
	}

	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, dest := range destinations {
		entity := dest.Entity()
		devices[i] = contracts.DeviceInfo{
			Index:        i,
			ID:           fmt.Sprintf("coremidi-%d", i),
			Name:         dest.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice opens the destination at deviceID.
func (m *ClientMid) SelectDevice(deviceID int) (contracts.Port, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}
	if deviceID < 0 || deviceID >= len(destinations) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return nil, fmt.Errorf("%w: %w", contracts.ErrDeviceNotFound, ErrInvalidMIDIDevice)
	}

	if !m.hasOutputPort {
		m.outputPort, err = coremidi.NewOutputPort(m.client, m.coreMIDIConfig.PortName)
		if err != nil {
			m.logger.Error(ErrCreateOutputPort.Error())
			return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
		}
		m.hasOutputPort = true
	}

	dest := destinations[deviceID]
	p := &destinationPort{client: m, dest: dest}
	m.opened[p] = struct{}{}
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", dest.Name()))
	return p, nil
}

func (m *ClientMid) send(p *destinationPort, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.opened[p]; !ok {
		return ErrPortClosed
	}
	packet := coremidi.NewPacket(data, 0)
	return packet.Send(&m.outputPort, &p.dest)
}

func (m *ClientMid) release(p *destinationPort) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.opened, p)
}

// Stop invalidates every opened destination. It runs once.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping MIDI output")
		m.mu.Lock()
		defer m.mu.Unlock()
		for p := range m.opened {
			delete(m.opened, p)
		}
	})
	return nil
}

// destinationPort is one opened CoreMIDI destination.
type destinationPort struct {
	client *ClientMid
	dest   coremidi.Destination
}

func (p *destinationPort) Send(data []byte) error { return p.client.send(p, data) }

func (p *destinationPort) Name() string { return p.dest.Name() }

func (p *destinationPort) Close() error {
	p.client.release(p)
	return nil
}
