// Package chord holds the fixed chord catalogue and expands a root pitch
// into the pitches of a chord.
package chord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leandrodaf/midiharness/sdk/contracts"
)

// MaxPitch is the highest valid MIDI note number.
const MaxPitch = 127

// Canonical chord type names.
const (
	Major      = "major"
	Minor      = "minor"
	Major7     = "major7"
	Minor7     = "minor7"
	Dominant7  = "dominant7"
	Diminished = "diminished"
	Augmented  = "augmented"
	Sus2       = "sus2"
	Sus4       = "sus4"
	Major9     = "major9"
)

var intervals = map[string][]int{
	Major:      {0, 4, 7},
	Minor:      {0, 3, 7},
	Major7:     {0, 4, 7, 11},
	Minor7:     {0, 3, 7, 10},
	Dominant7:  {0, 4, 7, 10},
	Diminished: {0, 3, 6},
	Augmented:  {0, 4, 8},
	Sus2:       {0, 2, 7},
	Sus4:       {0, 5, 7},
	Major9:     {0, 4, 7, 14},
}

// Short names used by the two harness pages.
var aliases = map[string]string{
	"dom7": Dominant7,
	"dim":  Diminished,
	"aug":  Augmented,
	"maj9": Major9,
	"maj7": Major7,
	"min7": Minor7,
}

// order is the catalogue order used for listings and key bindings.
var order = []string{Major, Minor, Major7, Minor7, Dominant7, Diminished, Augmented, Sus2, Sus4, Major9}

// Types returns the canonical chord type names in catalogue order.
func Types() []string {
	return append([]string(nil), order...)
}

// Aliases returns the accepted short names, sorted.
func Aliases() []string {
	names := make([]string, 0, len(aliases))
	for a := range aliases {
		names = append(names, a)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the canonical name for a chord type or alias.
func Resolve(chordType string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(chordType))
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	_, ok := intervals[name]
	return name, ok
}

// Intervals returns a copy of the semitone offsets for a chord type.
func Intervals(chordType string) ([]int, error) {
	name, ok := Resolve(chordType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", contracts.ErrUnknownChordType, chordType)
	}
	return append([]int(nil), intervals[name]...), nil
}

// Expand returns root+offset for each offset of the chord, in table
// order, dropping pitches outside 0-127. An unknown chord type yields an
// empty slice and an error wrapping contracts.ErrUnknownChordType.
func Expand(root int, chordType string) ([]uint8, error) {
	offsets, err := Intervals(chordType)
	if err != nil {
		return []uint8{}, err
	}
	pitches := make([]uint8, 0, len(offsets))
	for _, off := range offsets {
		p := root + off
		if p < 0 || p > MaxPitch {
			continue
		}
		pitches = append(pitches, uint8(p))
	}
	return pitches, nil
}

// Label formats pitches as "[60, 64, 67]".
func Label(pitches []uint8) string {
	parts := make([]string, len(pitches))
	for i, p := range pitches {
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
