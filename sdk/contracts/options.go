package contracts

import "time"

// Backend selects which output implementation the client factory builds.
type Backend string

const (
	// BackendAuto uses the native backend when one exists for the OS, gomidi otherwise.
	BackendAuto Backend = "auto"
	// BackendNative uses CoreMIDI on darwin and winmm on windows; other systems fail.
	BackendNative Backend = "native"
	// BackendGoMIDI uses the registered gomidi driver on every OS.
	BackendGoMIDI Backend = "gomidi"
)

// DefaultPortMatchers are the name fragments of the usual virtual loopback ports.
var DefaultPortMatchers = []string{"loopMIDI", "IAC"}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
	PortName   string // Name of the output port created by the client.
}

// ClientOptions defines the configuration options for the MIDI client and session.
type ClientOptions struct {
	Logger         Logger          // Logger for logging events and errors.
	LogLevel       LogLevel        // Level of logging to use.
	LogFilePath    string          // File path for logging if file logging is enabled.
	CoreMIDIConfig *CoreMIDIConfig // Configuration specific to CoreMIDI.
	Backend        Backend         // Output implementation to use.
	PortMatchers   []string        // Name fragments identifying a virtual port.
	AccessTimeout  time.Duration   // Upper bound on device enumeration.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file instead of the console.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithBackend forces a specific output backend.
func WithBackend(b Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = b
	}
}

// WithPortMatchers replaces the name fragments used to find a virtual port.
func WithPortMatchers(matchers ...string) Option {
	return func(opts *ClientOptions) {
		opts.PortMatchers = append([]string(nil), matchers...)
	}
}

// WithAccessTimeout bounds how long device enumeration may take.
func WithAccessTimeout(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.AccessTimeout = d
	}
}
