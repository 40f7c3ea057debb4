package audio

import (
	"math"
)

// number of table steps per cycle; tables hold one extra entry so that
// interpolation at the last step never wraps.
const sineResolution = 1024

var sineTable = newSineTable()

func newSineTable() *wavetable {
	wt := newWavetable(sineResolution)
	wt.generate(func(phase float64) float64 {
		return math.Sin(2.0 * math.Pi * phase)
	})
	return wt
}

type wavetable struct {
	resolution int
	values     []float64 // length: resolution + 1
}

func newWavetable(resolution int) *wavetable {
	return &wavetable{
		resolution: resolution,
		values:     make([]float64, resolution+1),
	}
}

// generate fills the table with one full cycle, endpoint included.
func (wt *wavetable) generate(phaseToValue func(phase float64) float64) {
	for i := range wt.values {
		wt.values[i] = phaseToValue(float64(i) / float64(wt.resolution))
	}
}

// getAtPhase reads the table at phase (in cycles, any real value) with linear interpolation.
func (wt *wavetable) getAtPhase(phase float64) float64 {
	normal := phase - math.Floor(phase)
	if !(normal >= 0 && normal <= 1) {
		// NaN or infinite phase
		return 0
	}
	pos := normal * float64(wt.resolution)
	index := int(pos)
	if index >= wt.resolution {
		// normal rounds up to 1.0 for tiny negative phases
		index = wt.resolution - 1
	}
	prog := pos - float64(index)
	return (1-prog)*wt.values[index] + prog*wt.values[index+1]
}
