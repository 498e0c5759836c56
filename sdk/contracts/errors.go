package contracts

import "errors"

// Errors shared by the backends, the session and the players.
var (
	ErrDeviceAccessDenied = errors.New("MIDI access denied")
	ErrNotSupported       = errors.New("MIDI output not supported on this system")
	ErrNoOutputFound      = errors.New("no MIDI output found")
	ErrDeviceNotFound     = errors.New("MIDI output not found")
	ErrPortNotSelected    = errors.New("port not initialized")
	ErrUnknownChordType   = errors.New("unknown chord type")
	ErrOutOfRange         = errors.New("value out of range")
	ErrSequenceRunning    = errors.New("a sequence is already running")
)
