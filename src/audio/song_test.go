package audio

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSongRandomizesWhilePlaying(t *testing.T) {
	var count atomic.Int64
	s := newSong(func() { count.Add(1) }, func() float64 { return 0 })
	s.interval = time.Millisecond

	assert.True(t, s.Toggle(context.Background()))
	assert.True(t, s.Playing())
	assert.Eventually(t, func() bool { return count.Load() >= 5 }, time.Second, time.Millisecond)

	assert.False(t, s.Toggle(context.Background()))
	assert.False(t, s.Playing())
	stopped := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, count.Load())
}

func TestSongRandomizesRarely(t *testing.T) {
	var count atomic.Int64
	s := newSong(func() { count.Add(1) }, func() float64 { return 0.9 })
	s.interval = time.Millisecond
	s.Play(context.Background())
	s.Play(context.Background()) // already playing: no second randomize
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int64(1), count.Load(), "only the immediate randomize")
}

func TestSongStopsWithContext(t *testing.T) {
	s := newSong(func() {}, func() float64 { return 1 })
	ctx, cancel := context.WithCancel(context.Background())
	s.Play(ctx)
	cancel()
	s.Stop()
	assert.False(t, s.Playing())
	s.Stop()
}

func TestSongCanReplayAfterParentContextEnds(t *testing.T) {
	var count atomic.Int64
	s := newSong(func() { count.Add(1) }, func() float64 { return 1 })
	s.interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	s.Play(ctx)
	cancel()
	assert.Eventually(t, func() bool { return !s.Playing() }, time.Second, time.Millisecond)

	s.Play(context.Background())
	assert.True(t, s.Playing())
	assert.Equal(t, int64(2), count.Load())
	s.Stop()
	assert.False(t, s.Playing())
}
