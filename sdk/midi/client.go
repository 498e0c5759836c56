package midi

import (
	"github.com/leandrodaf/midiharness/sdk/contracts"
	"github.com/leandrodaf/midiharness/sdk/session"
)

// NewMIDIClient creates a new MIDI output client with the specified options.
// It applies default options and initializes the client.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// NewSession creates a client and wraps it in a session configured from
// the same options. Closing the session stops the client.
func NewSession(opts ...contracts.Option) (*session.Session, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return session.New(client, options.Logger,
		session.WithPortMatchers(options.PortMatchers...),
		session.WithAccessTimeout(options.AccessTimeout),
	), nil
}
