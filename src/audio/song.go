package audio

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	songInterval   = 300 * time.Millisecond
	songChangeProb = 0.2
)

// Song keeps re-randomizing the knobs while playing.
type Song struct {
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	interval  time.Duration
	randomize func()
	chance    func() float64
}

func newSong(randomize func(), chance func() float64) *Song {
	return &Song{
		interval:  songInterval,
		randomize: randomize,
		chance:    chance,
	}
}

// Playing ...
func (s *Song) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Toggle starts the song if stopped and stops it if playing. It reports whether it is now playing.
func (s *Song) Toggle(ctx context.Context) bool {
	if s.Playing() {
		s.Stop()
		return false
	}
	s.Play(ctx)
	return true
}

// Play randomizes once right away, then every interval with some probability, until Stop or ctx ends.
func (s *Song) Play(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	// randomize takes the owner's lock; never call it holding s.mu
	s.randomize()
	go func() {
		defer close(done)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.mu.Lock()
				// still ours: the parent context ended without Stop
				if s.done == done {
					cancel()
					s.cancel, s.done = nil, nil
				}
				s.mu.Unlock()
				log.Println("song stopped")
				return
			case <-t.C:
				if s.chance() < songChangeProb {
					s.randomize()
				}
			}
		}
	}()
	log.Println("song started")
}

// Stop ends the song and waits for its goroutine.
func (s *Song) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
