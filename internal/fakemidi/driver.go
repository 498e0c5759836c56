package fakemidi

import (
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// Out is a gomidi drivers.Out that records sent bytes.
type Out struct {
	Num  int
	Name string

	mu      sync.Mutex
	open    bool
	sent    [][]byte
	OpenErr error
}

var _ drivers.Out = (*Out)(nil)

func (o *Out) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return o.OpenErr
	}
	o.open = true
	return nil
}

func (o *Out) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.open = false
	return nil
}

func (o *Out) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

func (o *Out) Number() int             { return o.Num }
func (o *Out) String() string          { return o.Name }
func (o *Out) Underlying() interface{} { return nil }

func (o *Out) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.open {
		return ErrClosed
	}
	o.sent = append(o.sent, append([]byte(nil), data...))
	return nil
}

// Sent returns a copy of the recorded messages.
func (o *Out) Sent() [][]byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([][]byte(nil), o.sent...)
}
