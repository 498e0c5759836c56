package contracts

// DeviceInfo describes a MIDI output destination reported by a backend.
type DeviceInfo struct {
	Index        int    // Position in the backend's enumeration, passed to SelectDevice.
	ID           string // Stable identifier used for selection by the session.
	Name         string // Destination name, e.g. "loopMIDI Port" or "IAC Driver Bus 1".
	Manufacturer string // Device manufacturer, when the backend knows it.
	EntityName   string // Name of the entity to which the destination belongs.
}

func (d DeviceInfo) String() string {
	return d.Name
}
