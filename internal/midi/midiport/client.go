// Package midiport is the output backend built on gomidi drivers. It is
// used on systems without a native backend and whenever gomidi is forced.
package midiport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/multierr"
)

// ErrPortClosed is returned by Send on a port that was closed.
var ErrPortClosed = errors.New("MIDI output port closed")

// Lister returns the output ports known to the registered driver.
type Lister func() []drivers.Out

// ClientMid opens gomidi output ports.
type ClientMid struct {
	logger contracts.Logger
	list   Lister

	mu       sync.Mutex
	opened   map[int]*shared
	stopOnce sync.Once
}

// shared is one driver output and the number of ports handed out for it.
type shared struct {
	out  drivers.Out
	refs int
}

// NewMIDIClient creates a client over the driver registered with gomidi,
// usually rtmididrv imported by the binary.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return NewWithLister(options.Logger, func() []drivers.Out { return gomidi.GetOutPorts() }), nil
}

// NewWithLister creates a client over an explicit port lister.
func NewWithLister(logger contracts.Logger, list Lister) *ClientMid {
	logger.Info("gomidi output client created")
	return &ClientMid{
		logger: logger,
		list:   list,
		opened: make(map[int]*shared),
	}
}

func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	outs := m.list()
	if len(outs) == 0 {
		m.logger.Warn(contracts.ErrNoOutputFound.Error())
		return nil, contracts.ErrNoOutputFound
	}

	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{
			Index:      i,
			ID:         fmt.Sprintf("gomidi-%d", out.Number()),
			Name:       out.String(),
			EntityName: out.String(),
		}
	}
	return devices, nil
}

func (m *ClientMid) SelectDevice(deviceID int) (contracts.Port, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	outs := m.list()
	if deviceID < 0 || deviceID >= len(outs) {
		m.logger.Error(contracts.ErrDeviceNotFound.Error(), m.logger.Field().Int("deviceID", deviceID))
		return nil, fmt.Errorf("%w: index %d", contracts.ErrDeviceNotFound, deviceID)
	}

	if sh, ok := m.opened[deviceID]; ok {
		sh.refs++
		m.logger.Debug("MIDI output reused",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Int("refs", sh.refs))
		return &port{shared: sh, client: m, index: deviceID}, nil
	}

	out := outs[deviceID]
	if !out.IsOpen() {
		if err := out.Open(); err != nil {
			m.logger.Error("Failed to open MIDI output",
				m.logger.Field().String("deviceName", out.String()),
				m.logger.Field().Error("error", err))
			return nil, fmt.Errorf("open %s: %w", out.String(), err)
		}
	}

	sh := &shared{out: out, refs: 1}
	m.opened[deviceID] = sh
	m.logger.Info("MIDI output opened",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", out.String()))
	return &port{shared: sh, client: m, index: deviceID}, nil
}

// Stop closes every port this client opened. It runs once.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for idx, sh := range m.opened {
			sh.refs = 0
			err = multierr.Append(err, sh.out.Close())
			delete(m.opened, idx)
		}
		m.logger.Info("gomidi output client stopped")
	})
	return err
}

// release drops one reference to the port's output and closes it with
// the last one.
func (m *ClientMid) release(p *port) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh := p.shared
	if sh.refs <= 0 {
		// already closed by Stop
		return nil
	}
	sh.refs--
	if sh.refs > 0 {
		return nil
	}
	if m.opened[p.index] == sh {
		delete(m.opened, p.index)
	}
	return sh.out.Close()
}

// port is one handle on a shared output. Closing it leaves other handles
// on the same device working.
type port struct {
	*shared
	client *ClientMid
	index  int

	mu     sync.Mutex
	closed bool
}

func (p *port) Send(data []byte) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPortClosed
	}
	return p.out.Send(data)
}

func (p *port) Name() string { return p.out.String() }

func (p *port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.client.release(p)
}
