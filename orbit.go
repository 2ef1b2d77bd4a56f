package buddhabrot

const (
	escapeRadiusSq       = 4.0
	criticalStepInitial  = 16
	// floatEpsilon mirrors FLT_EPSILON from the reference implementation;
	// cycle detection compares squared distances against its square.
	floatEpsilon = 1.1920929e-7
)

// Result is the outcome of evaluating a single candidate point's orbit.
type Result struct {
	// MaxIdx is the index of the last iterate before the orbit escaped (the
	// escape step minus one). It is -1 when the point is treated as in-set
	// (bulb test, detected cycle, or no escape within the window), and also
	// when c itself already lies outside radius 2.
	MaxIdx int
	// Contribute counts how many iterations, at any index (including those
	// below Windows.Low, which are not recorded), landed inside the current
	// view rectangle (or its mirror).
	Contribute int
	// Calculated counts how many iterations were actually run, for
	// diagnostics and the caller's step-count telemetry.
	Calculated int
	// MinCenterDist is the smallest squared distance from the view center
	// observed along the orbit, used by the seed search to home in on a
	// point that actually visits the viewport.
	MinCenterDist float64
}

// inBulbs performs the cheap analytic membership tests for the period-2
// bulb, the main cardioid, the period-4 bulb to its left, and the two
// period-3 cardioid satellites above and below the main cardioid. A point
// inside any of them never escapes, so evaluate can reject it before
// iterating.
func inBulbs(cr, ci float64) bool {
	ci2 := ci * ci

	if (cr+1.0)*(cr+1.0)+ci2 < 1.0/16.0 {
		return true
	}

	q := (cr-0.25)*(cr-0.25) + ci2
	if q*(q+cr-0.25) < 0.25*ci2 {
		return true
	}

	if (cr+1.309)*(cr+1.309)+ci2 < 0.00345 {
		return true
	}

	if (cr+0.125)*(cr+0.125)+(ci-0.744)*(ci-0.744) < 0.0088 {
		return true
	}
	if (cr+0.125)*(cr+0.125)+(ci+0.744)*(ci+0.744) < 0.0088 {
		return true
	}

	return false
}

// inside reports whether z, or its mirror across the real axis, falls
// within view's visible rectangle — exploiting the symmetry of the
// Buddhabrot around the real axis.
func inside(view *View, z complex128) bool {
	re, im := real(z), imag(z)
	if re > view.MaxRe || re < view.MinRe {
		return false
	}
	if im <= view.MaxIm && im >= view.MinIm {
		return true
	}
	return -im <= view.MaxIm && -im >= view.MinIm
}

// Evaluate iterates the orbit of c = begin under z ← z² + c up to
// view.Windows.High steps, recording every iterate at index >= Windows.Low
// into seq (which must have length High-Low), and detecting both escape and
// periodic cycles. seq is reused across calls by the caller to avoid
// per-orbit allocation.
func Evaluate(view *View, seq []complex128, begin complex128) Result {
	cr, ci := real(begin), imag(begin)
	if inBulbs(cr, ci) {
		return Result{MaxIdx: -1, MinCenterDist: 64.0}
	}

	cre, cim := real(view.Center), imag(view.Center)
	low, high := view.Windows.Low, view.Windows.High
	epsSq := float64(floatEpsilon) * float64(floatEpsilon)

	last := begin
	critical := last
	criticalStep := criticalStepInitial
	centerDistance := 64.0
	contribute := 0

	j := 0
	for i := 0; i < high; i++ {
		if i >= low {
			seq[j] = last
			j++
		}

		isInside := inside(view, last)
		if isInside {
			centerDistance = 0
			contribute++
		}

		lre, lim := real(last), imag(last)
		normLast := lre*lre + lim*lim

		if centerDistance != 0 {
			dre := lre - cre
			dim := lim - cim
			d := dre*dre + dim*dim
			if d < centerDistance && normLast < escapeRadiusSq {
				centerDistance = d
			}
		}

		if normLast > escapeRadiusSq {
			if !isInside {
				return Result{MaxIdx: i - 1, Contribute: contribute, Calculated: i, MinCenterDist: centerDistance}
			}
		}

		if i == criticalStep {
			critical = last
		} else if i > criticalStep {
			dre := lre - real(critical)
			dim := lim - imag(critical)
			if dre*dre+dim*dim < epsSq {
				return Result{MaxIdx: -1, Contribute: contribute, Calculated: i, MinCenterDist: centerDistance}
			}
			if i == criticalStep*2 {
				criticalStep *= 2
				critical = last
			}
		}

		last = complex(lre*lre-lim*lim+real(begin), 2*lre*lim+imag(begin))
	}

	return Result{MaxIdx: -1, Contribute: contribute, Calculated: high, MinCenterDist: centerDistance}
}
