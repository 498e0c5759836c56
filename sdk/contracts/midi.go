package contracts

// Port is an opened MIDI output destination.
// Send transmits one complete MIDI message; the slice is not retained.
type Port interface {
	Send(data []byte) error
	Name() string
	Close() error
}

// PortSource hands out the currently selected port, if any.
// Callers borrow the port for the duration of one call.
type PortSource interface {
	Port() (Port, bool)
}

// ClientMIDI defines the operations every output backend provides.
type ClientMIDI interface {
	Stop() error                             // Closes opened ports and releases backend resources.
	ListDevices() ([]DeviceInfo, error)      // Lists the available output destinations.
	SelectDevice(deviceID int) (Port, error) // Opens the destination at the given enumeration index.
}
