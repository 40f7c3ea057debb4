package audio

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
)

const (
	defaultSampleRate = 44100.0
	defaultFreq       = 200.0
	defaultLeftPhase  = 0.0
	defaultRightPhase = 0.25 // quadrature: a circle for equal frequencies
	defaultSineAmp    = 0.7
)

// ErrInvalidSampleRate is returned for rates that are not finite and positive.
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Visualizer receives every processed stereo block.
type Visualizer interface {
	Append(left, right []float64)
}

type stereoPair struct {
	left  *Oscillator
	right *Oscillator
}

// ----- Synth ----- //

// Synth renders two oscillators into a clipped stereo pair.
type Synth struct {
	pair       atomic.Pointer[stereoPair]
	sampleRate atomic.Uint64 // math.Float64bits
	active     atomic.Bool
	vis        Visualizer
}

// NewSynth returns an active synth with default oscillators. vis may be nil.
func NewSynth(vis Visualizer) *Synth {
	s := &Synth{vis: vis}
	s.sampleRate.Store(math.Float64bits(defaultSampleRate))
	s.active.Store(true)
	s.Init()
	return s
}

// Init replaces both oscillators with fresh defaults.
func (s *Synth) Init() {
	left := NewOscillator(defaultFreq, defaultLeftPhase)
	left.SetAmp(WaveSine, defaultSineAmp)
	right := NewOscillator(defaultFreq, defaultRightPhase)
	right.SetAmp(WaveSine, defaultSineAmp)
	rate := s.SampleRate()
	left.setSampleRate(rate)
	right.setSampleRate(rate)
	s.pair.Store(&stereoPair{left: left, right: right})
}

// SetSampleRate takes effect at the start of the next block.
func (s *Synth) SetSampleRate(rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, rate)
	}
	s.sampleRate.Store(math.Float64bits(rate))
	return nil
}

// SampleRate returns the most recently accepted sample rate.
func (s *Synth) SampleRate() float64 {
	return math.Float64frombits(s.sampleRate.Load())
}

// SetActive gates Process between real output and silence from the next block on.
func (s *Synth) SetActive(active bool) {
	s.active.Store(active)
}

// Active reports whether Process renders sound or silence.
func (s *Synth) Active() bool {
	return s.active.Load()
}

// Left returns the left channel oscillator.
func (s *Synth) Left() *Oscillator {
	return s.pair.Load().left
}

// Right returns the right channel oscillator.
func (s *Synth) Right() *Oscillator {
	return s.pair.Load().right
}

// Process fills left and right with one block. Only min(len(left), len(right)) samples are rendered.
func (s *Synth) Process(left, right []float64) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	left, right = left[:n], right[:n]
	if !s.active.Load() {
		for i := range left {
			left[i] = 0
			right[i] = 0
		}
		return
	}
	pair := s.pair.Load()
	if rate := s.SampleRate(); pair.left.sampleRate != rate {
		pair.left.setSampleRate(rate)
		pair.right.setSampleRate(rate)
	}
	for i := 0; i < n; i++ {
		left[i] = Clip(pair.left.Tick())
		right[i] = Clip(pair.right.Tick())
	}
	if s.vis != nil {
		s.vis.Append(left, right)
	}
}

// Clip hard-limits s to [-1, 1]. NaN becomes silence.
func Clip(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	if s >= 1 {
		return 1
	}
	if s <= -1 {
		return -1
	}
	return s
}
