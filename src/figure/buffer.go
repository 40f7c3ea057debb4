// Package figure carries synthesized stereo samples to the Lissajous renderer.
package figure

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is enough for a few frames of audio between two draws.
const DefaultCapacity = 2048

// Point is one stereo sample pair: L on the x axis, R on the y axis.
type Point struct {
	L float64
	R float64
}

// Buffer hands points from the audio goroutine to the render loop.
//
// Append never waits: a block that does not fit, or that arrives while the
// renderer is draining, is dropped whole and counted.
type Buffer struct {
	mu       sync.Mutex
	points   []Point
	capacity int
	dropped  atomic.Uint64
}

// NewBuffer ...
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		points:   make([]Point, 0, capacity),
		capacity: capacity,
	}
}

// Append stores the block (left[i], right[i]) in order, or drops it entirely.
func (b *Buffer) Append(left, right []float64) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	if !b.mu.TryLock() {
		b.dropped.Add(uint64(n))
		return
	}
	defer b.mu.Unlock()
	if len(b.points)+n > b.capacity {
		b.dropped.Add(uint64(n))
		return
	}
	for i := 0; i < n; i++ {
		b.points = append(b.points, Point{L: left[i], R: right[i]})
	}
}

// Drain appends every stored point to dst in insertion order and empties the buffer.
func (b *Buffer) Drain(dst []Point) []Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	dst = append(dst, b.points...)
	b.points = b.points[:0]
	return dst
}

// DrainAndClear returns every stored point in insertion order and empties the buffer.
func (b *Buffer) DrainAndClear() []Point {
	return b.Drain(nil)
}

// Len ...
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.points)
}

// Cap returns the point threshold above which blocks are dropped.
func (b *Buffer) Cap() int {
	return b.capacity
}

// Dropped counts points discarded since the buffer was created.
func (b *Buffer) Dropped() uint64 {
	return b.dropped.Load()
}
