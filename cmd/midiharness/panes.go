package main

import (
	"strings"
	"sync"
)

// lines is a bounded, concurrency-safe list of text lines. As an
// io.Writer it takes log output; as a sequencer.StepLog it takes the
// step trail. Every change is signalled on Changed.
type lines struct {
	mu      sync.Mutex
	max     int
	items   []string
	partial string
	changed chan struct{}
}

func newLines(max int) *lines {
	return &lines{max: max, changed: make(chan struct{}, 1)}
}

func (l *lines) Write(p []byte) (int, error) {
	l.mu.Lock()
	text := l.partial + string(p)
	parts := strings.Split(text, "\n")
	l.partial = parts[len(parts)-1]
	for _, s := range parts[:len(parts)-1] {
		l.appendLocked(strings.TrimRight(s, "\r"))
	}
	l.mu.Unlock()
	l.signal()
	return len(p), nil
}

func (l *lines) Log(message string) {
	l.mu.Lock()
	l.appendLocked(message)
	l.mu.Unlock()
	l.signal()
}

func (l *lines) Reset() {
	l.mu.Lock()
	l.items = nil
	l.partial = ""
	l.mu.Unlock()
	l.signal()
}

func (l *lines) appendLocked(s string) {
	l.items = append(l.items, s)
	if over := len(l.items) - l.max; over > 0 {
		l.items = append([]string(nil), l.items[over:]...)
	}
}

func (l *lines) signal() {
	select {
	case l.changed <- struct{}{}:
	default:
	}
}

// Changed receives a value after one or more updates.
func (l *lines) Changed() <-chan struct{} { return l.changed }

// Tail returns up to n of the most recent lines.
func (l *lines) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.items) {
		n = len(l.items)
	}
	return append([]string(nil), l.items[len(l.items)-n:]...)
}
