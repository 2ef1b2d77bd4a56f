package buddhabrot

// Accumulator holds raw per-pixel, per-channel hit counts: three uint64s
// per pixel (red, green, blue), flattened row-major. Counters are widened
// to uint64 from the reference implementation's unsigned int, since a long
// running session can plausibly overflow 32 bits in a single hot pixel.
type Accumulator struct {
	Raw  []uint64
	size int
}

// NewAccumulator allocates an accumulator sized for the given pixel count.
func NewAccumulator(size int) *Accumulator {
	return &Accumulator{Raw: make([]uint64, 3*size), size: size}
}

// Reset zeroes every counter in place without reallocating.
func (a *Accumulator) Reset() {
	for i := range a.Raw {
		a.Raw[i] = 0
	}
}

// Add accumulates src's counters into a elementwise. Both accumulators must
// share the same size; callers hold whatever locks src and a require before
// calling.
func (a *Accumulator) Add(src *Accumulator) {
	for i, v := range src.Raw {
		a.Raw[i] += v
	}
}

// Maxima returns the largest red, green and blue counters across every
// pixel, used to normalize the tone-mapping pass.
func (a *Accumulator) Maxima() (maxR, maxG, maxB uint64) {
	for i := 0; i+2 < len(a.Raw); i += 3 {
		if a.Raw[i] > maxR {
			maxR = a.Raw[i]
		}
		if a.Raw[i+1] > maxG {
			maxG = a.Raw[i+1]
		}
		if a.Raw[i+2] > maxB {
			maxB = a.Raw[i+2]
		}
	}
	return maxR, maxG, maxB
}

// DrawPoint deposits z, and its mirror across the real axis, into acc's
// channels selected by mask. Points falling outside view's visible
// rectangle on either axis are silently dropped; matching
// buddhaGenerator.cpp:105-106, the clip test is strict (re < MinRe ||
// re > MaxRe), so the clip test itself lets a point landing exactly on the
// boundary through. Unlike the reference implementation, the resulting
// pixel index is additionally bounds-checked here, so a point on the MaxRe
// or MinIm edge, whose index comes out as view.W or view.H, is dropped — Go
// panics on an out-of-range slice index where C++ would silently corrupt
// adjacent memory.
func DrawPoint(acc *Accumulator, view *View, z complex128, mask ChannelMask) {
	re := real(z)
	if re < view.MinRe || re > view.MaxRe {
		return
	}
	x := int((re - view.MinRe) * view.Scale)
	if x < 0 || x >= view.W {
		return
	}

	plot := func(im float64) {
		if im < view.MinIm || im > view.MaxIm {
			return
		}
		y := int((view.MaxIm - im) * view.Scale)
		if y < 0 || y >= view.H {
			return
		}
		base := (y*view.W + x) * 3
		if mask.R {
			acc.Raw[base+0]++
		}
		if mask.G {
			acc.Raw[base+1]++
		}
		if mask.B {
			acc.Raw[base+2]++
		}
	}

	plot(imag(z))
	plot(-imag(z))
}
