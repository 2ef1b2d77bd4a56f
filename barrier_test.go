package buddhabrot

import (
	"testing"
	"time"
)

func TestBarrierAcquireBlocksUntilReleased(t *testing.T) {
	b := newBarrier()
	done := make(chan struct{})

	go func() {
		b.acquire(3)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("acquire returned before any permits were released")
	case <-time.After(20 * time.Millisecond):
	}

	b.release(2)
	select {
	case <-done:
		t.Fatalf("acquire returned after only 2 of 3 permits were released")
	case <-time.After(20 * time.Millisecond):
	}

	b.release(1)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("acquire did not return after all 3 permits were released")
	}
}

func TestBarrierPermitsQueueAcrossCycles(t *testing.T) {
	b := newBarrier()
	b.release(1)
	b.release(1)

	done := make(chan struct{})
	go func() {
		b.acquire(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("acquire did not consume permits released before it was called")
	}
}
