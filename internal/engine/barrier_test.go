package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrierReleasesAllPartiesTogether(t *testing.T) {
	n := 4
	b := NewBarrier(n)
	var arrived int32
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		go func() {
			atomic.AddInt32(&arrived, 1)
			b.Wait()
			done <- struct{}{}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("barrier never released all parties")
		}
	}
	assert.EqualValues(t, n, atomic.LoadInt32(&arrived))
}

func TestBarrierIsCyclic(t *testing.T) {
	n := 2
	b := NewBarrier(n)
	for round := 0; round < 3; round++ {
		done := make(chan struct{}, n)
		for i := 0; i < n; i++ {
			go func() {
				b.Wait()
				done <- struct{}{}
			}()
		}
		for i := 0; i < n; i++ {
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatalf("round %d: barrier never released", round)
			}
		}
	}
}
