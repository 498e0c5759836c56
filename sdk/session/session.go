// Package session owns MIDI output access: the enumerated destinations,
// the one selected port, and the set of notes currently sounding on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/encoder"
	"github.com/leandrodaf/midiharness/sdk/tracker"
	"go.uber.org/multierr"
)

// DefaultAccessTimeout bounds device enumeration. CoreMIDI can hang.
const DefaultAccessTimeout = 3 * time.Second

// Session is the process-wide MIDI output state. It is created on
// device access, mutated by selection and note calls, and torn down by
// Reset or Close.
type Session struct {
	client   contracts.ClientMIDI
	logger   contracts.Logger
	matchers []string
	timeout  time.Duration

	mu      sync.RWMutex
	devices []contracts.DeviceInfo
	port    contracts.Port
	info    contracts.DeviceInfo

	active *tracker.Tracker
}

// Option configures a Session.
type Option func(*Session)

// WithPortMatchers sets the name fragments SelectVirtual looks for.
func WithPortMatchers(matchers ...string) Option {
	return func(s *Session) {
		if len(matchers) > 0 {
			s.matchers = append([]string(nil), matchers...)
		}
	}
}

// WithAccessTimeout bounds RequestAccess.
func WithAccessTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a session over a backend client.
func New(client contracts.ClientMIDI, logger contracts.Logger, opts ...Option) *Session {
	s := &Session{
		client:   client,
		logger:   logger,
		matchers: contracts.DefaultPortMatchers,
		timeout:  DefaultAccessTimeout,
		active:   tracker.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type listResult struct {
	devices []contracts.DeviceInfo
	err     error
}

// RequestAccess enumerates the available outputs and remembers them for selection.
func (s *Session) RequestAccess(ctx context.Context) ([]contracts.DeviceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ch := make(chan listResult, 1)
	go func() {
		devices, err := s.client.ListDevices()
		ch <- listResult{devices: devices, err: err}
	}()

	var res listResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := fmt.Errorf("%w: device enumeration: %v", contracts.ErrDeviceAccessDenied, ctx.Err())
		s.logger.Error("MIDI access denied", s.logger.Field().Error("error", err))
		return nil, err
	}

	if res.err != nil {
		err := res.err
		if !errors.Is(err, contracts.ErrNotSupported) && !errors.Is(err, contracts.ErrNoOutputFound) {
			err = fmt.Errorf("%w: %v", contracts.ErrDeviceAccessDenied, err)
		}
		s.logger.Error("MIDI access denied", s.logger.Field().Error("error", err))
		return nil, err
	}
	if len(res.devices) == 0 {
		s.logger.Warn("No MIDI outputs found")
		return nil, contracts.ErrNoOutputFound
	}

	s.mu.Lock()
	s.devices = res.devices
	s.mu.Unlock()

	s.logger.Info("MIDI access granted", s.logger.Field().Int("outputs", len(res.devices)))
	for _, d := range res.devices {
		s.logger.Info("Available MIDI output",
			s.logger.Field().Int("index", d.Index),
			s.logger.Field().String("id", d.ID),
			s.logger.Field().String("name", d.Name))
	}
	return append([]contracts.DeviceInfo(nil), res.devices...), nil
}

// Devices returns the outputs found by the last RequestAccess.
func (s *Session) Devices() []contracts.DeviceInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contracts.DeviceInfo(nil), s.devices...)
}

// Select opens the output with the given ID and makes it current.
// The previous port, if any, is closed after the swap.
func (s *Session) Select(id string) (contracts.Port, error) {
	info, ok := s.find(func(d contracts.DeviceInfo) bool { return d.ID == id })
	if !ok {
		err := fmt.Errorf("%w: %q", contracts.ErrDeviceNotFound, id)
		s.logger.Error("Select failed", s.logger.Field().Error("error", err))
		return nil, err
	}
	return s.open(info)
}

// SelectFirst opens the first enumerated output.
func (s *Session) SelectFirst() (contracts.Port, error) {
	info, ok := s.find(func(contracts.DeviceInfo) bool { return true })
	if !ok {
		s.logger.Warn("No MIDI outputs found")
		return nil, contracts.ErrNoOutputFound
	}
	return s.open(info)
}

// SelectVirtual opens the first output whose name contains one of the
// configured matchers, e.g. loopMIDI or IAC.
func (s *Session) SelectVirtual() (contracts.Port, error) {
	info, ok := s.find(func(d contracts.DeviceInfo) bool {
		for _, m := range s.matchers {
			if strings.Contains(d.Name, m) {
				return true
			}
		}
		return false
	})
	if !ok {
		s.logger.Warn("Virtual MIDI port not found. Create one and try again.",
			s.logger.Field().String("matchers", strings.Join(s.matchers, ",")))
		return nil, fmt.Errorf("%w: no output matches %v", contracts.ErrNoOutputFound, s.matchers)
	}
	s.logger.Info("Found virtual port", s.logger.Field().String("name", info.Name))
	return s.open(info)
}

// SelectName opens the first output whose name contains fragment.
func (s *Session) SelectName(fragment string) (contracts.Port, error) {
	info, ok := s.find(func(d contracts.DeviceInfo) bool {
		return strings.Contains(strings.ToLower(d.Name), strings.ToLower(fragment))
	})
	if !ok {
		err := fmt.Errorf("%w: %q", contracts.ErrDeviceNotFound, fragment)
		s.logger.Error("Select failed", s.logger.Field().Error("error", err))
		return nil, err
	}
	return s.open(info)
}

func (s *Session) find(match func(contracts.DeviceInfo) bool) (contracts.DeviceInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.devices {
		if match(d) {
			return d, true
		}
	}
	return contracts.DeviceInfo{}, false
}

func (s *Session) open(info contracts.DeviceInfo) (contracts.Port, error) {
	port, err := s.client.SelectDevice(info.Index)
	if err != nil {
		s.logger.Error("Failed to open MIDI output",
			s.logger.Field().String("name", info.Name),
			s.logger.Field().Error("error", err))
		return nil, err
	}

	s.mu.Lock()
	old := s.port
	s.port = port
	s.info = info
	sounding := s.active.Drain()
	s.mu.Unlock()

	if old != nil {
		s.silence(old, sounding)
		if err := old.Close(); err != nil {
			s.logger.Warn("Closing previous port failed", s.logger.Field().Error("error", err))
		}
	}
	s.logger.Info("Selected", s.logger.Field().String("name", info.Name))
	return port, nil
}

// silence turns off the notes left sounding on a port being replaced.
func (s *Session) silence(port contracts.Port, keys []tracker.Key) {
	var err error
	for _, k := range keys {
		err = multierr.Append(err, port.Send(encoder.NoteOff(k.Pitch, k.Channel)))
	}
	if err != nil {
		s.logger.Warn("Releasing notes on previous port failed", s.logger.Field().Error("error", err))
		return
	}
	if len(keys) > 0 {
		s.logger.Info("Released notes on previous port",
			s.logger.Field().Int("count", len(keys)),
			s.logger.Field().String("name", port.Name()))
	}
}

// Port returns the selected port, if any.
func (s *Session) Port() (contracts.Port, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.port, s.port != nil
}

// Selected describes the selected output. ok is false when nothing is selected.
func (s *Session) Selected() (info contracts.DeviceInfo, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, s.port != nil
}

// Active returns the set of notes turned on and not yet released.
func (s *Session) Active() *tracker.Tracker {
	return s.active
}

// Send writes a frame to the selected port.
func (s *Session) Send(frame []byte) error {
	port, ok := s.Port()
	if !ok {
		s.logger.Warn("Port not initialized")
		return contracts.ErrPortNotSelected
	}
	return port.Send(frame)
}

// Reset deselects and closes the port and forgets the active notes.
func (s *Session) Reset() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.info = contracts.DeviceInfo{}
	s.mu.Unlock()

	s.active.Drain()
	if port == nil {
		return nil
	}
	return port.Close()
}

// Close resets the session and stops the backend.
func (s *Session) Close() error {
	err := multierr.Combine(s.Reset(), s.client.Stop())
	if err != nil {
		s.logger.Error("Session close failed", s.logger.Field().Error("error", err))
	}
	return err
}
