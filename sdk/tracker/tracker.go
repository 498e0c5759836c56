// Package tracker records which (channel, pitch) pairs are sounding.
package tracker

import (
	"fmt"
	"sync"
)

// Key identifies a sounding note.
type Key struct {
	Channel uint8
	Pitch   uint8
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%d", k.Channel, k.Pitch)
}

// Tracker is an insertion-ordered set of Keys, safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	order []Key
	set   map[Key]struct{}
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{set: make(map[Key]struct{})}
}

// Add records a note. It returns false if the note was already tracked,
// in which case its original position is kept.
func (t *Tracker) Add(channel, pitch uint8) bool {
	k := Key{Channel: channel, Pitch: pitch}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.set[k]; ok {
		return false
	}
	t.set[k] = struct{}{}
	t.order = append(t.order, k)
	return true
}

// Remove forgets a note and reports whether it was tracked.
func (t *Tracker) Remove(channel, pitch uint8) bool {
	k := Key{Channel: channel, Pitch: pitch}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.set[k]; !ok {
		return false
	}
	delete(t.set, k)
	for i, o := range t.order {
		if o == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether a note is tracked.
func (t *Tracker) Contains(channel, pitch uint8) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.set[Key{Channel: channel, Pitch: pitch}]
	return ok
}

// Len returns the number of tracked notes.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Keys returns the tracked notes in insertion order.
func (t *Tracker) Keys() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Key(nil), t.order...)
}

// Drain returns the tracked notes in insertion order and empties the set.
func (t *Tracker) Drain() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := t.order
	t.order = nil
	t.set = make(map[Key]struct{})
	return keys
}
