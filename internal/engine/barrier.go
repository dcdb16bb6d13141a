package engine

import "sync"

// Barrier is a cyclic N-party rendezvous: Wait blocks every caller
// until all n parties have called it, then releases them all at once.
// Go's stdlib has no barrier primitive, so this is hand-rolled on top
// of sync.Cond the way original_source/src/main.rs's `run()` uses
// std::sync::Barrier around the coordinator/capture/playback/process
// four-way startup rendezvous.
type Barrier struct {
	n          int
	mu         sync.Mutex
	cond       *sync.Cond
	count      int
	generation int
}

// NewBarrier builds a Barrier for exactly n parties.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the calling goroutine until n goroutines have called
// Wait on this barrier, then releases all of them simultaneously.
func (b *Barrier) Wait() {
	b.mu.Lock()
	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
	} else {
		for gen == b.generation {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
