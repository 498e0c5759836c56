// Package fakemidi provides in-memory ports and clients for tests.
package fakemidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

// ErrClosed is returned by Send on a closed port.
var ErrClosed = errors.New("port closed")

// Port records every frame sent to it.
type Port struct {
	name string

	mu      sync.Mutex
	frames  [][]byte
	closed  bool
	sendErr error
}

// NewPort creates an open recording port.
func NewPort(name string) *Port {
	return &Port{name: name}
}

func (p *Port) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.sendErr != nil {
		return p.sendErr
	}
	p.frames = append(p.frames, append([]byte(nil), data...))
	return nil
}

func (p *Port) Name() string { return p.name }

func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// FailWith makes subsequent sends return err.
func (p *Port) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sendErr = err
}

// Frames returns a copy of everything sent so far.
func (p *Port) Frames() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.frames))
	copy(out, p.frames)
	return out
}

// Clear forgets recorded frames.
func (p *Port) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = nil
}

// Closed reports whether Close was called.
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Source is a fixed contracts.PortSource; a nil port means nothing is selected.
type Source struct {
	P contracts.Port
}

func (s Source) Port() (contracts.Port, bool) {
	return s.P, s.P != nil
}

// Client is a contracts.ClientMIDI over named recording ports.
type Client struct {
	mu        sync.Mutex
	names     []string
	opened    []*Port
	ListErr   error
	SelectErr error
	Block     chan struct{} // when non-nil, ListDevices waits for it to close
	stopped   bool
}

// NewClient creates a client whose destinations carry the given names.
func NewClient(names ...string) *Client {
	return &Client{names: names}
}

func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	if c.Block != nil {
		<-c.Block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ListErr != nil {
		return nil, c.ListErr
	}
	devices := make([]contracts.DeviceInfo, len(c.names))
	for i, name := range c.names {
		devices[i] = contracts.DeviceInfo{
			Index: i,
			ID:    fmt.Sprintf("fake-%d", i),
			Name:  name,
		}
	}
	return devices, nil
}

func (c *Client) SelectDevice(deviceID int) (contracts.Port, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SelectErr != nil {
		return nil, c.SelectErr
	}
	if deviceID < 0 || deviceID >= len(c.names) {
		return nil, contracts.ErrDeviceNotFound
	}
	p := NewPort(c.names[deviceID])
	c.opened = append(c.opened, p)
	return p, nil
}

func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}

// Opened returns every port handed out by SelectDevice, oldest first.
func (c *Client) Opened() []*Port {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Port(nil), c.opened...)
}

// Stopped reports whether Stop was called.
func (c *Client) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}
