package sequencer

import (
	"fmt"
	"time"

	"github.com/leandrodaf/midiharness/sdk/chord"
	"github.com/leandrodaf/midiharness/sdk/encoder"
)

// Progression is I-IV-V-I in C major.
func Progression() Sequence {
	const (
		vel = encoder.Velocity(0.7)
		dur = 800 * time.Millisecond
		gap = 1000 * time.Millisecond
	)
	cue := func(offset int) []ChordCue {
		return []ChordCue{{RootOffset: offset, Type: chord.Major, Velocity: vel, Duration: dur}}
	}
	return Sequence{
		Name: "progression",
		Root: 60,
		Steps: []Step{
			{Label: "Bar 1: I (C Major)", Chords: cue(0), Gap: gap},
			{Label: "Bar 2: IV (F Major)", Chords: cue(5), Gap: gap},
			{Label: "Bar 3: V (G Major)", Chords: cue(7), Gap: gap},
			{Label: "Bar 4: I (C Major)", Chords: cue(0)},
		},
	}
}

// Turnaround is ii7-V7-Imaj7 in C.
func Turnaround() Sequence {
	const (
		vel = encoder.Velocity(0.75)
		dur = 900 * time.Millisecond
		gap = 1100 * time.Millisecond
	)
	return Sequence{
		Name: "turnaround",
		Root: 60,
		Steps: []Step{
			{Label: "Bar 1: ii (Dm7)", Chords: []ChordCue{{RootOffset: 2, Type: chord.Minor7, Velocity: vel, Duration: dur}}, Gap: gap},
			{Label: "Bar 2: V (G7)", Chords: []ChordCue{{RootOffset: 7, Type: chord.Dominant7, Velocity: vel, Duration: dur}}, Gap: gap},
			{Label: "Bar 3: I (Cmaj7)", Chords: []ChordCue{{RootOffset: 0, Type: chord.Major7, Velocity: vel, Duration: dur}}},
		},
	}
}

// MultiChannel layers three chords on channels 0-2, one at a time and then together.
func MultiChannel() Sequence {
	const (
		dur = 1200 * time.Millisecond
		gap = 1500 * time.Millisecond
	)
	bass := ChordCue{RootOffset: 0, Type: chord.Major, Channel: 0, Velocity: 0.9, Duration: dur}
	mid := ChordCue{RootOffset: 16, Type: chord.Minor, Channel: 1, Velocity: 0.7, Duration: dur}
	high := ChordCue{RootOffset: 31, Type: chord.Major, Channel: 2, Velocity: 0.6, Duration: dur}
	together := bass
	together.Velocity = 0.8

	return Sequence{
		Name: "multichannel",
		Root: 48,
		Steps: []Step{
			{Label: "Ch1: C Major (bass)", Chords: []ChordCue{bass}, Gap: gap},
			{Label: "Ch2: E Minor (mid)", Chords: []ChordCue{mid}, Gap: gap},
			{Label: "Ch3: G Major (high)", Chords: []ChordCue{high}, Gap: gap},
			{Label: "All channels together!", Chords: []ChordCue{together, mid, high}},
		},
	}
}

// VelocityDynamics repeats C major from pianissimo to fortissimo.
func VelocityDynamics() Sequence {
	const (
		dur = 600 * time.Millisecond
		gap = 800 * time.Millisecond
	)
	levels := []struct {
		vel   encoder.Velocity
		label string
	}{
		{0.3, "pp (soft)"},
		{0.5, "mp (medium-soft)"},
		{0.7, "mf (medium-loud)"},
		{0.9, "ff (loud)"},
	}
	seq := Sequence{Name: "velocity", Root: 60}
	for _, l := range levels {
		seq.Steps = append(seq.Steps, Step{
			Label:  fmt.Sprintf("C Major @ velocity %.1f - %s", float64(l.vel), l.label),
			Chords: []ChordCue{{Type: chord.Major, Velocity: l.vel, Duration: dur}},
			Gap:    gap,
		})
	}
	return seq
}

// Demos returns the built-in sequences.
func Demos() []Sequence {
	return []Sequence{Progression(), Turnaround(), MultiChannel(), VelocityDynamics()}
}

// Demo looks up a built-in sequence by name.
func Demo(name string) (Sequence, bool) {
	for _, s := range Demos() {
		if s.Name == name {
			return s, true
		}
	}
	return Sequence{}, false
}
