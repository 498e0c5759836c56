//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/leandrodaf/midiharness/sdk/contracts"
	"go.uber.org/multierr"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIOUT windows.Handle

const CALLBACK_NULL = 0x00000000 // No completion callback

// Errors returned by the winmm output client.
var (
	ErrPortClosed   = errors.New("MIDI output port closed")
	ErrShortMessage = errors.New("message is not a short MIDI message")
)

// Struct representing MIDI output device capabilities (MIDIOUTCAPSW)
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// ClientMid sends MIDI through winmm output devices on Windows
type ClientMid struct {
	logger   contracts.Logger
	mu       sync.Mutex
	opened   map[*outPort]struct{}
	stopOnce sync.Once
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// NewMIDIClient creates a MIDI output client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("MIDI client created for Windows")

	return &ClientMid{
		logger: options.Logger,
		opened: make(map[*outPort]struct{}),
	}, nil
}

// ListDevices lists the MIDI output devices, loopMIDI ports included
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn(contracts.ErrNoOutputFound.Error())
		return nil, contracts.ErrNoOutputFound
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		caps, err := deviceCaps(i)
		if err != nil {
			m.logger.Warn(fmt.Sprintf("Failed to get information for MIDI device %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Index:        int(i),
			ID:           fmt.Sprintf("winmm-%d", i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

func deviceCaps(id uint32) (midiOutCaps, error) {
	var caps midiOutCaps
	r1, _, _ := procMidiOutGetDevCaps.Call(
		uintptr(id),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return caps, fmt.Errorf("midiOutGetDevCaps: MMRESULT %d", r1)
	}
	return caps, nil
}

// SelectDevice opens a MIDI output device
func (m *ClientMid) SelectDevice(deviceID int) (contracts.Port, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiOutGetNumDevs.Call()
	if deviceID < 0 || deviceID >= int(r0) {
		m.logger.Error(fmt.Sprintf("MIDI device %d does not exist", deviceID))
		return nil, fmt.Errorf("%w: index %d", contracts.ErrDeviceNotFound, deviceID)
	}
	caps, err := deviceCaps(uint32(deviceID))
	if err != nil {
		return nil, err
	}

	p := &outPort{client: m, name: windows.UTF16ToString(caps.szPname[:])}
	r1, _, callErr := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&p.handle)),
		uintptr(deviceID),
		0,
		0,
		uintptr(CALLBACK_NULL),
	)
	if r1 != 0 {
		m.logger.Error(fmt.Sprintf("Failed to open MIDI device %d: %v", deviceID, callErr))
		return nil, fmt.Errorf("failed to open MIDI device %d: MMRESULT %d", deviceID, r1)
	}

	m.opened[p] = struct{}{}
	m.logger.Info(fmt.Sprintf("MIDI device %d opened", deviceID), m.logger.Field().String("deviceName", p.name))
	return p, nil
}

// Stop resets and closes every opened device
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for p := range m.opened {
			err = multierr.Append(err, p.closeHandle())
			delete(m.opened, p)
		}
		m.logger.Info("MIDI output devices closed")
	})
	return err
}

// packShortMessage packs status|data1<<8|data2<<16 as midiOutShortMsg expects
func packShortMessage(data []byte) (uintptr, error) {
	if len(data) == 0 || len(data) > 3 || data[0] < 0x80 {
		return 0, ErrShortMessage
	}
	var msg uintptr
	for i, b := range data {
		msg |= uintptr(b) << (8 * i)
	}
	return msg, nil
}

type outPort struct {
	client *ClientMid
	name   string
	mu     sync.Mutex
	handle HMIDIOUT
}

func (p *outPort) Send(data []byte) error {
	msg, err := packShortMessage(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return ErrPortClosed
	}
	r1, _, _ := procMidiOutShortMsg.Call(uintptr(p.handle), msg)
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg: MMRESULT %d", r1)
	}
	return nil
}

func (p *outPort) Name() string { return p.name }

func (p *outPort) Close() error {
	p.client.mu.Lock()
	delete(p.client.opened, p)
	p.client.mu.Unlock()
	return p.closeHandle()
}

func (p *outPort) closeHandle() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil
	}
	procMidiOutReset.Call(uintptr(p.handle))
	r1, _, _ := procMidiOutClose.Call(uintptr(p.handle))
	p.handle = 0
	if r1 != 0 {
		return fmt.Errorf("midiOutClose: MMRESULT %d", r1)
	}
	return nil
}
