package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingVisualizer struct {
	calls int
	left  []float64
	right []float64
}

func (r *recordingVisualizer) Append(left, right []float64) {
	r.calls++
	r.left = append(r.left, left...)
	r.right = append(r.right, right...)
}

func TestClip(t *testing.T) {
	for _, s := range []float64{-1e9, -4, -1.0000001, -1, -0.3, 0, 0.999, 1, 1.5, 1e9} {
		c := Clip(s)
		assert.GreaterOrEqual(t, c, -1.0)
		assert.LessOrEqual(t, c, 1.0)
		if s >= -1 && s <= 1 {
			assert.Equal(t, s, c)
		}
	}
}

func TestClipSilencesNaN(t *testing.T) {
	assert.Equal(t, 0.0, Clip(math.NaN()))
	assert.Equal(t, 1.0, Clip(math.Inf(1)))
	assert.Equal(t, -1.0, Clip(math.Inf(-1)))
}

func TestDefaults(t *testing.T) {
	s := NewSynth(nil)
	assert.True(t, s.Active())
	assert.Equal(t, defaultSampleRate, s.SampleRate())
	assert.Equal(t, 200.0, s.Left().GetFreq())
	assert.Equal(t, 200.0, s.Right().GetFreq())
	assert.Equal(t, 0.0, s.Left().GetPhase())
	assert.Equal(t, 0.25, s.Right().GetPhase())
	assert.Equal(t, 0.7, s.Left().GetAmp(WaveSine))
	assert.Equal(t, 0.7, s.Right().GetAmp(WaveSine))
	assert.Equal(t, 0.0, s.Right().GetAmp(WaveSquare))
}

func TestInitReplacesState(t *testing.T) {
	s := NewSynth(nil)
	s.Left().SetFreq(500)
	require.NoError(t, s.Right().SetAmp(WaveSaw, 1))
	s.Process(make([]float64, 64), make([]float64, 64))
	s.Init()
	assert.Equal(t, 200.0, s.Left().GetFreq())
	assert.Equal(t, 0.0, s.Right().GetAmp(WaveSaw))
	assert.Equal(t, 0.0, s.Left().Phase())
}

func TestProcessForwardsBlock(t *testing.T) {
	vis := &recordingVisualizer{}
	s := NewSynth(vis)
	left := make([]float64, 256)
	right := make([]float64, 256)
	s.Process(left, right)
	require.Equal(t, 1, vis.calls)
	assert.Equal(t, left, vis.left)
	assert.Equal(t, right, vis.right)
}

func TestProcessOutputIsClipped(t *testing.T) {
	s := NewSynth(nil)
	for _, osc := range []*Oscillator{s.Left(), s.Right()} {
		for _, kind := range WaveKinds() {
			require.NoError(t, osc.SetAmp(kind, 3))
		}
	}
	left := make([]float64, 512)
	right := make([]float64, 512)
	sawClipped := false
	for block := 0; block < 200; block++ {
		s.Process(left, right)
		for i := range left {
			require.LessOrEqual(t, math.Abs(left[i]), 1.0)
			require.LessOrEqual(t, math.Abs(right[i]), 1.0)
			if math.Abs(left[i]) == 1 {
				sawClipped = true
			}
		}
	}
	assert.True(t, sawClipped)
}

func TestInactiveProcessIsSilent(t *testing.T) {
	vis := &recordingVisualizer{}
	s := NewSynth(vis)
	left := make([]float64, 512)
	right := make([]float64, 512)
	for i := 0; i < 100; i++ {
		s.Process(left, right)
	}
	calls := vis.calls
	phase := s.Left().Phase()

	for i := range left {
		left[i], right[i] = 0.5, -0.5
	}
	s.SetActive(false)
	s.Process(left, right)
	for i := range left {
		require.Equal(t, 0.0, left[i])
		require.Equal(t, 0.0, right[i])
	}
	assert.Equal(t, calls, vis.calls)
	assert.Equal(t, phase, s.Left().Phase(), "phase must not advance while inactive")

	s.SetActive(true)
	s.Process(left, right)
	assert.Equal(t, calls+1, vis.calls)
	assert.NotEqual(t, phase, s.Left().Phase())
}

func TestSetSampleRate(t *testing.T) {
	s := NewSynth(nil)
	for _, rate := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, s.SetSampleRate(rate), ErrInvalidSampleRate, "rate=%v", rate)
	}
	assert.Equal(t, defaultSampleRate, s.SampleRate())

	require.NoError(t, s.SetSampleRate(48000))
	assert.Equal(t, defaultSampleRate, s.Left().sampleRate, "applied at the next block")
	s.Process(make([]float64, 8), make([]float64, 8))
	assert.Equal(t, 48000.0, s.Left().sampleRate)
	assert.Equal(t, 48000.0, s.Right().sampleRate)

	s.Init()
	assert.Equal(t, 48000.0, s.Left().sampleRate)
}

func TestProcessUsesShorterChannel(t *testing.T) {
	vis := &recordingVisualizer{}
	s := NewSynth(vis)
	s.Process(make([]float64, 100), make([]float64, 60))
	assert.Len(t, vis.left, 60)
	assert.Len(t, vis.right, 60)
}

func TestQuadratureDrawsCircle(t *testing.T) {
	s := NewSynth(nil)
	left := make([]float64, 512)
	right := make([]float64, 512)
	// let the amplitude glide (slowest decay) settle
	for i := 0; i < 400; i++ {
		s.Process(left, right)
	}
	// 4410 samples at 44100 Hz is exactly 20 cycles of 200 Hz
	left = make([]float64, 4410)
	right = make([]float64, 4410)
	s.Process(left, right)

	var lr, ll, rr float64
	for i := range left {
		radius2 := left[i]*left[i] + right[i]*right[i]
		require.InDelta(t, 0.49, radius2, 0.002, "sample %d", i)
		lr += left[i] * right[i]
		ll += left[i] * left[i]
		rr += right[i] * right[i]
	}
	// a quarter cycle apart means uncorrelated at zero lag
	assert.Less(t, math.Abs(lr)/math.Sqrt(ll*rr), 0.01)

	// right leads left by a quarter cycle: it peaks first
	peak := func(xs []float64) int {
		best := 0
		for i, x := range xs[:221] {
			if x > xs[best] {
				best = i
			}
		}
		return best
	}
	lead := (peak(left) - peak(right) + 221) % 221
	assert.InDelta(t, 55, lead, 2)
}

func BenchmarkProcess(b *testing.B) {
	s := NewSynth(nil)
	for _, kind := range WaveKinds() {
		s.Left().SetAmp(kind, 0.25)
		s.Right().SetAmp(kind, 0.25)
	}
	left := make([]float64, 512)
	right := make([]float64, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(left, right)
	}
}
