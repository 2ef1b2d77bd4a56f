package buddhabrot

import "fmt"

// maxPixelCount bounds w*h so that buffer allocation stays within what a
// single process can reasonably hold; it stands in for the "allocation
// failed" error path since Go's make() does not itself report out-of-memory
// conditions for realistic sizes.
const maxPixelCount = 1 << 28

// Windows holds the three per-channel iteration ranges [low, high) used to
// color the red, green and blue planes of the output frame, plus the
// combined Low/High spanning all three (the range that must actually be
// iterated and recorded per orbit).
type Windows struct {
	LowR, HighR int
	LowG, HighG int
	LowB, HighB int
	Low, High   int
}

// NewWindows validates and builds a Windows, rejecting inverted or negative
// ranges as configuration errors (section 7: Configuration errors are
// rejectable, they never mutate state).
func NewWindows(lowR, highR, lowG, highG, lowB, highB int) (Windows, error) {
	if lowR < 0 || lowG < 0 || lowB < 0 {
		return Windows{}, fmt.Errorf("buddhabrot: iteration window bounds must be non-negative")
	}
	if highR <= lowR || highG <= lowG || highB <= lowB {
		return Windows{}, fmt.Errorf("buddhabrot: iteration window high bound must exceed low bound")
	}

	w := Windows{LowR: lowR, HighR: highR, LowG: lowG, HighG: highG, LowB: lowB, HighB: highB}
	w.Low = min3(lowR, lowG, lowB)
	w.High = max3(highR, highG, highB)
	return w, nil
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// ChannelMask marks which of the red, green and blue accumulators a given
// orbit index should deposit into.
type ChannelMask struct {
	R, G, B bool
}

// Mask reports, for iteration index i, which channels' windows it falls
// strictly inside. It reproduces the original's drawing condition
// (`i < high && i > low`, both strict) rather than the half-open [low,high)
// used for the combined range — the per-channel test really is strict on
// both ends in the reference implementation.
func (w Windows) Mask(i int) ChannelMask {
	return ChannelMask{
		R: i > w.LowR && i < w.HighR,
		G: i > w.LowG && i < w.HighG,
		B: i > w.LowB && i < w.HighB,
	}
}

// View is an immutable snapshot of the sampling viewport: center, scale,
// pixel dimensions and derived extents, plus the iteration windows. It is
// published to workers through an atomically-swapped pointer (see
// Coordinator.viewPtr) rather than read off mutable shared fields, closing
// the torn-read hazard called out in the design notes.
type View struct {
	Center  complex128
	Scale   float64
	W, H    int
	Size    int
	Windows Windows

	RangeRe, RangeIm         float64
	MinRe, MaxRe, MinIm, MaxIm float64
}

// NewView validates the view parameters and computes the derived extents.
func NewView(center complex128, scale float64, w, h int, windows Windows) (*View, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("buddhabrot: scale must be positive, got %v", scale)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("buddhabrot: width and height must be positive, got %dx%d", w, h)
	}
	if w*h <= 0 || w*h > maxPixelCount {
		return nil, fmt.Errorf("buddhabrot: %dx%d pixels exceeds the supported buffer size", w, h)
	}

	rangeRe := float64(w) / scale
	rangeIm := float64(h) / scale
	cre, cim := real(center), imag(center)

	v := &View{
		Center:  center,
		Scale:   scale,
		W:       w,
		H:       h,
		Size:    w * h,
		Windows: windows,
		RangeRe: rangeRe,
		RangeIm: rangeIm,
		MinRe:   cre - rangeRe/2,
		MaxRe:   cre + rangeRe/2,
		MinIm:   cim - rangeIm/2,
		MaxIm:   cim + rangeIm/2,
	}
	return v, nil
}

// dimensionsChanged reports whether the pixel grid size differs from prev,
// which forces accumulator reallocation (prev == nil counts as changed).
func (v *View) dimensionsChanged(prev *View) bool {
	return prev == nil || v.W != prev.W || v.H != prev.H
}

// geometryChanged reports whether the visible region moved or rescaled,
// which invalidates existing hit counts even when the pixel grid is the
// same size.
func (v *View) geometryChanged(prev *View) bool {
	return prev == nil || v.Center != prev.Center || v.Scale != prev.Scale
}
