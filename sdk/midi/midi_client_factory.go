package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midiharness/internal/midi/mididarwin"
	"github.com/leandrodaf/midiharness/internal/midi/midiport"
	"github.com/leandrodaf/midiharness/internal/midi/midiwindows"
	"github.com/leandrodaf/midiharness/sdk/contracts"
)

type initializer func(*contracts.ClientOptions) (contracts.ClientMIDI, error)

var (
	// ErrUnsupportedOS is returned when no native backend exists for the operating system.
	ErrUnsupportedOS = fmt.Errorf("unsupported operating system: %w", contracts.ErrNotSupported)
	// ErrUnknownBackend is returned for a backend name the factory does not know.
	ErrUnknownBackend = errors.New("unknown MIDI backend")
)

// clientInitializers maps OS names to corresponding native MIDI client initializers.
var clientInitializers = map[string]initializer{
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI client initializer.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client initializer.
}

// gomidiInitializer builds the driver-based client used outside darwin and windows.
var gomidiInitializer initializer = midiport.NewMIDIClient

// NewClient initializes a MIDI output client for the configured backend.
// BackendAuto picks the native client for the current OS and falls back to gomidi.
//
// opts *contracts.ClientOptions: Configuration options for the MIDI client.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: ErrUnsupportedOS when a native backend is forced on an OS without one.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return newClient(opts, runtime.GOOS)
}

func newClient(opts *contracts.ClientOptions, goos string) (contracts.ClientMIDI, error) {
	native, hasNative := clientInitializers[goos]

	switch opts.Backend {
	case contracts.BackendAuto, "":
		if hasNative {
			return native(opts)
		}
		opts.Logger.Debug("No native MIDI backend; using gomidi", opts.Logger.Field().String("os", goos))
		return gomidiInitializer(opts)
	case contracts.BackendNative:
		if hasNative {
			return native(opts)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	case contracts.BackendGoMIDI:
		return gomidiInitializer(opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
