package audio

import (
	"math"
	"testing"

	"github.com/jinjor/lissa-juice/src/smooth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsetAmpReadsZero(t *testing.T) {
	o := NewOscillator(200, 0)
	require.NoError(t, o.SetAmp(WaveSine, 0.7))
	assert.Equal(t, 0.0, o.GetAmp(WaveSquare))
	assert.Equal(t, 0.0, o.GetAmp(WaveSaw))
	assert.Equal(t, 0.7, o.GetAmp(WaveSine))
}

func TestSetAmpRejectsUnknownKind(t *testing.T) {
	o := NewOscillator(200, 0)
	require.NoError(t, o.SetAmp(WaveSine, 0.5))
	err := o.SetAmp(WaveKind(42), 1)
	assert.ErrorIs(t, err, ErrUnknownWave)
	for _, kind := range WaveKinds() {
		if kind == WaveSine {
			assert.Equal(t, 0.5, o.GetAmp(kind))
		} else {
			assert.Equal(t, 0.0, o.GetAmp(kind), "%v", kind)
		}
	}
	assert.Equal(t, 0.0, o.GetAmp(WaveKind(42)))
}

func TestSettersReturnTargets(t *testing.T) {
	o := NewOscillator(200, 0)
	o.SetFreq(330)
	o.SetPhase(0.125)
	assert.Equal(t, 330.0, o.GetFreq())
	assert.Equal(t, 0.125, o.GetPhase())
}

func TestTickMatchesSmoothedRecurrence(t *testing.T) {
	const rate = 48000.0
	o := NewOscillator(440, 0.1)
	o.setSampleRate(rate)
	require.NoError(t, o.SetAmp(WaveSaw, 0.5))
	require.NoError(t, o.SetAmp(WaveSine, 0.25))

	freq := smooth.New(440, freqDecay)
	offset := smooth.New(0.1, phaseDecay)
	saw := smooth.New(0.5, ampDecay)
	sine := smooth.New(0.25, ampDecay)
	phase := 0.0
	for i := 0; i < 2000; i++ {
		off := offset.Tick()
		phase += freq.Tick() / rate
		phase -= math.Floor(phase)
		want := sine.Tick()*Sine(phase+off) + saw.Tick()*Saw(phase+off)
		require.InDelta(t, want, o.Tick(), 1e-9, "tick %d", i)
	}
}

func TestAmplitudeGlidesInGradually(t *testing.T) {
	o := NewOscillator(200, 0)
	require.NoError(t, o.SetAmp(WaveSquare, 1))
	// square is +1 for the first half cycle, so the output is the current amplitude
	first := o.Tick()
	assert.InDelta(t, 1-ampDecay, first, 1e-12)
	prev := first
	for i := 0; i < 50; i++ {
		v := o.Tick()
		assert.Greater(t, v, prev)
		prev = v
	}
	assert.Less(t, prev, 0.01)
}

func TestPhaseStaysWrapped(t *testing.T) {
	for _, freq := range []float64{200, 19000, -300} {
		o := NewOscillator(freq, 0)
		o.setSampleRate(44100)
		for i := 0; i < 100000; i++ {
			o.Tick()
			p := o.Phase()
			require.GreaterOrEqual(t, p, 0.0, "freq=%v", freq)
			require.Less(t, p, 1.0, "freq=%v", freq)
		}
	}
}

func TestSilentWithoutAmplitudes(t *testing.T) {
	o := NewOscillator(200, 0)
	for i := 0; i < 1000; i++ {
		require.Equal(t, 0.0, o.Tick())
	}
}

func TestSettersRejectNonFinite(t *testing.T) {
	o := NewOscillator(200, 0.25)
	require.NoError(t, o.SetAmp(WaveSine, 0.5))
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, o.SetFreq(v), ErrNonFinite, "freq %v", v)
		assert.ErrorIs(t, o.SetPhase(v), ErrNonFinite, "phase %v", v)
		assert.ErrorIs(t, o.SetAmp(WaveSaw, v), ErrNonFinite, "amp %v", v)
	}
	assert.Equal(t, 200.0, o.GetFreq())
	assert.Equal(t, 0.25, o.GetPhase())
	assert.Equal(t, 0.5, o.GetAmp(WaveSine))
	assert.Equal(t, 0.0, o.GetAmp(WaveSaw))
	for i := 0; i < 1000; i++ {
		v := o.Tick()
		require.False(t, math.IsNaN(v), "tick %d", i)
	}
}
