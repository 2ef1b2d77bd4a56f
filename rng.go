package buddhabrot

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RNG wraps a per-worker random source. Each worker owns one so that
// concurrent sampling never contends on a shared generator, mirroring the
// original's per-generator RNG state.
type RNG struct {
	src *xrand.Rand
}

// NewRNG builds an RNG seeded from seed. Workers derive their seed from a
// freshly generated uuid rather than a shared counter, so restarting a run
// with the same worker count does not replay identical orbit sequences.
func NewRNG(seed uint64) *RNG {
	return &RNG{src: xrand.New(xrand.NewSource(seed))}
}

// Uniform returns a uniform sample in [0, 1).
func (r *RNG) Uniform() float64 {
	return r.src.Float64()
}

// GaussianPair draws two independent samples from N(0, radius^2), used to
// mutate a point during the seed search.
func (r *RNG) GaussianPair(radius float64) (dx, dy float64) {
	if radius <= 0 {
		return 0, 0
	}
	n := distuv.Normal{Mu: 0, Sigma: radius, Src: r.src}
	return n.Rand(), n.Rand()
}

// ExponentialPair draws two independent samples from a symmetric (sign
// chosen uniformly) exponential distribution with the given mean radius,
// used to propose a Metropolis mutation.
func (r *RNG) ExponentialPair(radius float64) (dx, dy float64) {
	if radius <= 0 {
		return 0, 0
	}
	e := distuv.Exponential{Rate: 1 / radius, Src: r.src}

	dx = e.Rand()
	if r.src.Float64() < 0.5 {
		dx = -dx
	}
	dy = e.Rand()
	if r.src.Float64() < 0.5 {
		dy = -dy
	}
	return dx, dy
}
