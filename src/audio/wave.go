package audio

import (
	"errors"
	"fmt"
	"math"
)

// ----- Wave Kind ----- //

// WaveKind is one of the closed set of waveforms an oscillator can blend.
type WaveKind int

// Wave kinds
const (
	WaveSine WaveKind = iota
	WaveSquare
	WaveSaw
	WaveTriangle
	numWaveKinds
)

// ErrUnknownWave is returned for wave kinds outside the known set.
var ErrUnknownWave = errors.New("unknown wave kind")

var waveKindNames = [numWaveKinds]string{
	WaveSine:     "sine",
	WaveSquare:   "square",
	WaveSaw:      "saw",
	WaveTriangle: "triangle",
}

var waveFuncs = [numWaveKinds]func(float64) float64{
	WaveSine:     Sine,
	WaveSquare:   Square,
	WaveSaw:      Saw,
	WaveTriangle: Triangle,
}

// WaveKinds lists every known kind in table order.
func WaveKinds() []WaveKind {
	return []WaveKind{WaveSine, WaveSquare, WaveSaw, WaveTriangle}
}

// Valid reports whether k is one of the known kinds.
func (k WaveKind) Valid() bool {
	return k >= 0 && k < numWaveKinds
}

func (k WaveKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("WaveKind(%d)", int(k))
	}
	return waveKindNames[k]
}

// Func returns the waveform function for k, or nil for an unknown kind.
func (k WaveKind) Func() func(float64) float64 {
	if !k.Valid() {
		return nil
	}
	return waveFuncs[k]
}

// ParseWaveKind accepts the full names and the short names used by the knobs.
func ParseWaveKind(s string) (WaveKind, error) {
	switch s {
	case "sine", "sin":
		return WaveSine, nil
	case "square", "sqr":
		return WaveSquare, nil
	case "saw", "sawtooth":
		return WaveSaw, nil
	case "triangle", "tri":
		return WaveTriangle, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWave, s)
}

// ----- Waveforms ----- //
// phase is in cycles and need not be wrapped; results are in [-1, 1].

// Sine reads the interpolated sine table.
func Sine(phase float64) float64 {
	return sineTable.getAtPhase(phase)
}

// Square is +1 for the first half cycle and -1 for the second.
func Square(phase float64) float64 {
	normal := phase - math.Floor(phase)
	if normal < 0.5 {
		return 1
	}
	return -1
}

// Saw rises from -1 to 1 over one cycle.
func Saw(phase float64) float64 {
	normal := phase - math.Floor(phase)
	return 2*normal - 1
}

// Triangle starts at -1, crosses zero at a quarter cycle and peaks at half a cycle.
func Triangle(phase float64) float64 {
	normal := phase - math.Floor(phase)
	return 1 - 2*math.Abs(1-2*normal)
}
