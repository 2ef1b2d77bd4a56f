package buddhabrot

import (
	"sync"
	"testing"
)

func TestFindPointReturnsContributeZeroOnFailure(t *testing.T) {
	w := mustWindows(t, 0, 10, 0, 10, 0, 10)
	// A view 2e-9 units wide parked squarely over the main cardioid: the
	// escaping orbits the seed search evaluates practically never land in so
	// small a square, so the last evaluated orbit contributes nothing.
	v, err := NewView(complex(0, 0), 1e9, 2, 2, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	rng := NewRNG(1)
	s := NewSampler(rng)

	seed := s.findPoint(v, seq, complex(0, 0))
	if seed.contribute != 0 {
		t.Skipf("seed search unexpectedly found a contributing orbit near the origin (contribute=%d); not a reliable failure case on this RNG stream", seed.contribute)
	}
}

func TestMetropolisHonorsFlowStop(t *testing.T) {
	w := mustWindows(t, 0, 50, 0, 200, 0, 1000)
	v, err := NewView(complex(-0.5, 0), 300, 400, 400, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	acc := NewAccumulator(v.Size)
	rng := NewRNG(7)
	s := NewSampler(rng)

	calls := 0
	flow := func() bool {
		calls++
		return calls < 3
	}

	var mu sync.Mutex
	_, stopped := s.Metropolis(v, seq, acc, mu.Lock, mu.Unlock, flow)
	if !stopped {
		t.Errorf("Metropolis did not report stopped when flow returned false")
	}
}

func TestMetropolisCalculatedNeverNegative(t *testing.T) {
	w := mustWindows(t, 0, 50, 0, 200, 0, 1000)
	v, err := NewView(complex(-0.5, 0), 300, 400, 400, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	acc := NewAccumulator(v.Size)
	rng := NewRNG(42)
	s := NewSampler(rng)

	var mu sync.Mutex
	calculated, stopped := s.Metropolis(v, seq, acc, mu.Lock, mu.Unlock, func() bool { return true })
	if stopped {
		t.Fatalf("unexpected stop with a flow that always returns true")
	}
	if calculated < 0 {
		t.Errorf("calculated = %d, want >= 0", calculated)
	}
}
