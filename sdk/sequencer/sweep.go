package sequencer

import (
	"math"
	"time"

	"github.com/leandrodaf/midiharness/sdk/scheduler"
)

// Sweep timing: nine bends, 100ms apart.
const (
	SweepSteps    = 9
	SweepInterval = 100 * time.Millisecond
)

// PitchBender sends a raw bend value.
type PitchBender interface {
	PitchBend(value int, channel uint8) error
}

// SweepValues returns round(i/8*8192)-4096 for i in 0..8.
func SweepValues() []int {
	values := make([]int, SweepSteps)
	last := float64(SweepSteps - 1)
	for i := range values {
		values[i] = int(math.Round(float64(i)/last*8192)) - 4096
	}
	return values
}

// BendSweep schedules every bend of the sweep up front. Each send is
// independent; the returned task can cancel those not yet sent.
func BendSweep(b PitchBender, clock scheduler.Clock, channel uint8) *scheduler.Task {
	task := scheduler.NewTask(clock)
	for i, v := range SweepValues() {
		value := v
		task.After(time.Duration(i)*SweepInterval, func() {
			_ = b.PitchBend(value, channel)
		})
	}
	return task
}
