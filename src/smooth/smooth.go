package smooth

import (
	"math"
	"sync/atomic"
)

// ----- Smoothed Value ----- //

// Value glides exponentially towards its target, one step per Tick.
//
// Set and Get may be called from any goroutine. Tick and Current belong to
// the goroutine that owns the value (the audio loop or the frame loop).
type Value struct {
	target  atomic.Uint64 // math.Float64bits
	current float64
	decay   float64 // 0 < decay < 1
}

// New returns a value heading for target from 0.
func New(target float64, decay float64) *Value {
	v := &Value{decay: decay}
	v.Set(target)
	return v
}

// Set stores x as the new target. current is untouched until the next Tick.
func (v *Value) Set(x float64) {
	v.target.Store(math.Float64bits(x))
}

// Get returns the target, not the smoothed value.
func (v *Value) Get() float64 {
	return math.Float64frombits(v.target.Load())
}

// Tick advances current one decay step towards the target and returns it.
func (v *Value) Tick() float64 {
	v.current = v.decay*v.current + (1-v.decay)*v.Get()
	return v.current
}

// Current returns the smoothed value without advancing it.
func (v *Value) Current() float64 {
	return v.current
}

// Reset jumps both target and current to x.
func (v *Value) Reset(x float64) {
	v.Set(x)
	v.current = x
}

// Decay returns the decay rate.
func (v *Value) Decay() float64 {
	return v.decay
}
