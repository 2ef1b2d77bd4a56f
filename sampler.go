package buddhabrot

import "math"

// findPointMax caps how many mutations the seed search will attempt before
// giving up on finding a point whose orbit visits the viewport.
const findPointMax = 256

// Sampler runs the Metropolis-Hastings walk for a single worker. It holds
// no view state of its own; every call is handed the current view snapshot
// explicitly, so a view swap never needs to be synchronized against an
// in-flight sampler.
type Sampler struct {
	rng *RNG
}

// NewSampler builds a Sampler drawing mutations from rng.
func NewSampler(rng *RNG) *Sampler {
	return &Sampler{rng: rng}
}

type seedResult struct {
	begin      complex128
	maxIdx     int
	contribute int
	calculated int
}

// findPoint searches near begin for a point whose orbit passes close to the
// view center, by repeatedly applying a Gaussian mutation whose radius
// shrinks as the best distance found so far shrinks. It always returns the
// statistics of the last orbit it evaluated, which is not necessarily the
// accepted one if the search exhausts its iteration budget without
// reaching distance zero — a quirk inherited from the reference
// implementation (see design notes).
func (s *Sampler) findPoint(view *View, seq []complex128, begin complex128) seedResult {
	bestDist := 64.0
	tmp := begin
	maxIdx := -1
	contribute := 0
	calculated := 0

	iterations := 0
	for {
		dx, dy := s.rng.GaussianPair(0.25 * math.Sqrt(bestDist))
		tmp = complex(real(tmp)+dx, imag(tmp)+dy)

		res := Evaluate(view, seq, tmp)
		calculated += res.Calculated
		maxIdx = res.MaxIdx
		contribute = res.Contribute

		if maxIdx != -1 && res.MinCenterDist < bestDist {
			bestDist = res.MinCenterDist
			begin = tmp
		} else {
			tmp = begin
		}

		iterations++
		if bestDist == 0 || iterations >= findPointMax {
			break
		}
	}

	return seedResult{begin: begin, maxIdx: maxIdx, contribute: contribute, calculated: calculated}
}

// Metropolis runs one outer sampling batch against view: it finds a seed
// point, then proposes a bounded number of mutations around it, accepting
// or rejecting each by the Metropolis ratio, and unconditionally depositing
// every orbit that contributes at least one in-view iteration (not just the
// accepted ones) into acc. Each proposal's deposit batch is bracketed by
// lock/unlock, which the caller wires to the owning worker's mutex — acc is
// owned and written by exactly one worker, and the coordinator only ever
// reads it under that same mutex (see Coordinator.reduce), so every write
// must take the lock too, the same way the reference implementation scopes
// a QMutexLocker around its draw loop. flow is polled once per proposal and
// should return false to abort early for a pause or stop request;
// Metropolis returns the total number of orbit steps it calculated, and
// whether flow asked it to stop.
func (s *Sampler) Metropolis(view *View, seq []complex128, acc *Accumulator, lock, unlock func(), flow func() bool) (calculated int, stopped bool) {
	seed := s.findPoint(view, seq, complex(0, 0))
	if seed.contribute == 0 {
		return seed.calculated, false
	}

	ok := seed.begin
	selMax := seed.maxIdx
	selCnt := seed.contribute
	radius := 40.0 / view.Scale

	limit := selCnt * 256
	if alt := selMax * 2; alt > limit {
		limit = alt
	}

	total := seed.calculated
	for j := 0; j < limit; j++ {
		if !flow() {
			return total, true
		}

		dx, dy := s.rng.ExponentialPair(s.rng.Uniform() * radius)
		candidate := complex(real(ok)+dx, imag(ok)+dy)

		res := Evaluate(view, seq, candidate)
		total += res.Calculated
		if res.MaxIdx <= 0 || res.Contribute == 0 {
			continue
		}

		alpha := float64(res.MaxIdx) * float64(res.MaxIdx) * float64(res.Contribute) /
			(float64(selMax) * float64(selMax) * float64(selCnt))
		if alpha > s.rng.Uniform() {
			ok = candidate
			selMax = res.MaxIdx
			selCnt = res.Contribute
		}

		lock()
		for h := 0; h <= res.MaxIdx-view.Windows.Low; h++ {
			i := h + view.Windows.Low
			DrawPoint(acc, view, seq[h], view.Windows.Mask(i))
		}
		unlock()
	}

	return total, false
}
