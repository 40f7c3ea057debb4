package audio

import (
	"errors"
	"fmt"
	"math"

	"github.com/jinjor/lissa-juice/src/smooth"
)

// decay rates per quantity; amplitude glides slowest to avoid clicks
const (
	ampDecay   = 0.99995
	freqDecay  = 0.997
	phaseDecay = 0.9994
)

// ErrNonFinite is returned by setters given NaN or an infinity.
var ErrNonFinite = errors.New("value is not finite")

func checkFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s %v", ErrNonFinite, name, v)
	}
	return nil
}

// ----- OSC ----- //

// Oscillator sums the enabled waveforms of one channel.
//
// Tick must be called exactly once per output sample by a single goroutine.
// The setters only write targets and may be called from elsewhere.
type Oscillator struct {
	phase       float64 // [0, 1)
	sampleRate  float64
	freq        *smooth.Value
	phaseOffset *smooth.Value
	amps        [numWaveKinds]*smooth.Value
}

// NewOscillator returns an oscillator gliding towards freq (Hz) and phase (cycles) with all amplitudes at 0.
func NewOscillator(freq float64, phase float64) *Oscillator {
	o := &Oscillator{
		sampleRate:  defaultSampleRate,
		freq:        smooth.New(freq, freqDecay),
		phaseOffset: smooth.New(phase, phaseDecay),
	}
	for i := range o.amps {
		o.amps[i] = smooth.New(0, ampDecay)
	}
	return o
}

// Tick advances the oscillator by one sample and returns the unclipped sum.
func (o *Oscillator) Tick() float64 {
	offset := o.phaseOffset.Tick()
	freq := o.freq.Tick()
	_, o.phase = math.Modf(o.phase + freq/o.sampleRate)
	if o.phase < 0 {
		o.phase++
		if o.phase >= 1 {
			o.phase = 0
		}
	}
	value := 0.0
	t := o.phase + offset
	for kind, amp := range o.amps {
		a := amp.Tick()
		if a == 0 {
			continue
		}
		value += a * waveFuncs[kind](t)
	}
	return value
}

func (o *Oscillator) setSampleRate(rate float64) {
	o.sampleRate = rate
}

// SetFreq sets the target frequency in Hz.
func (o *Oscillator) SetFreq(hz float64) error {
	if err := checkFinite("freq", hz); err != nil {
		return err
	}
	o.freq.Set(hz)
	return nil
}

// SetPhase sets the target phase offset in cycles.
func (o *Oscillator) SetPhase(cycles float64) error {
	if err := checkFinite("phase", cycles); err != nil {
		return err
	}
	o.phaseOffset.Set(cycles)
	return nil
}

// SetAmp sets the target amplitude of one waveform.
func (o *Oscillator) SetAmp(kind WaveKind, amount float64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownWave, kind)
	}
	if err := checkFinite("amp", amount); err != nil {
		return err
	}
	o.amps[kind].Set(amount)
	return nil
}

// GetFreq returns the target frequency.
func (o *Oscillator) GetFreq() float64 {
	return o.freq.Get()
}

// GetPhase returns the target phase offset.
func (o *Oscillator) GetPhase() float64 {
	return o.phaseOffset.Get()
}

// GetAmp returns the target amplitude of kind; 0 for kinds never set or unknown.
func (o *Oscillator) GetAmp(kind WaveKind) float64 {
	if !kind.Valid() {
		return 0
	}
	return o.amps[kind].Get()
}

// Phase returns the accumulator position in [0, 1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}
