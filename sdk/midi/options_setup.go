package midi

import (
	"github.com/leandrodaf/midiharness/internal/logger"
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/session"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger() // Default to a JSON logger on stderr
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "GO MIDI Harness", PortName: "Output Port"}
	}
	if options.CoreMIDIConfig.PortName == "" {
		options.CoreMIDIConfig.PortName = "Output Port"
	}
	if options.Backend == "" {
		options.Backend = contracts.BackendAuto
	}
	if len(options.PortMatchers) == 0 {
		options.PortMatchers = contracts.DefaultPortMatchers
	}
	if options.AccessTimeout <= 0 {
		options.AccessTimeout = session.DefaultAccessTimeout
	}

	options.Logger.SetLevel(options.LogLevel) // InfoLevel is the zero value
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
