package buddhabrot

import "testing"

func testView(t *testing.T) *View {
	t.Helper()
	w, err := NewWindows(0, 50, 0, 200, 0, 1000)
	if err != nil {
		t.Fatalf("NewWindows: %v", err)
	}
	v, err := NewView(complex(-0.5, 0), 300, 400, 400, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	return v
}

func TestInBulbsRejectsMainCardioidCenter(t *testing.T) {
	if !inBulbs(0, 0) {
		t.Errorf("origin should be rejected as inside the main cardioid")
	}
}

func TestInBulbsRejectsPeriod2Bulb(t *testing.T) {
	if !inBulbs(-1.0, 0.0) {
		t.Errorf("(-1, 0) should be rejected as inside the period-2 bulb")
	}
}

func TestInBulbsAcceptsExteriorPoint(t *testing.T) {
	if inBulbs(-2.0, 0.0) {
		t.Errorf("(-2, 0) is outside every bulb/cardioid and must not be rejected")
	}
}

func TestEvaluateRejectsBulbPointAsMaxIdxMinusOne(t *testing.T) {
	v := testView(t)
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	res := Evaluate(v, seq, complex(0, 0))
	if res.MaxIdx != -1 {
		t.Errorf("MaxIdx = %d, want -1 for an in-set point", res.MaxIdx)
	}
	if res.Calculated != 0 {
		t.Errorf("Calculated = %d, want 0 for an analytically rejected point", res.Calculated)
	}
}

func TestEvaluateEscapesObviousExteriorPoint(t *testing.T) {
	v := testView(t)
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	// (1, 1) has squared modulus 2 < 4 so it survives the first iteration
	// before escaping, giving a non-trivial (>= 0) escape index rather than
	// the -1 a point that is already outside radius 2 at step zero shares
	// with an in-set point.
	res := Evaluate(v, seq, complex(1.0, 1.0))
	if res.MaxIdx < 0 {
		t.Errorf("MaxIdx = %d, want a small non-negative escape index", res.MaxIdx)
	}
	if res.Calculated <= 0 || res.Calculated > v.Windows.High {
		t.Errorf("Calculated = %d, want in (0, %d]", res.Calculated, v.Windows.High)
	}
	if res.Contribute < 0 || res.Contribute > res.Calculated {
		t.Errorf("Contribute = %d out of range [0, %d]", res.Contribute, res.Calculated)
	}
}

func TestEvaluateNeverExceedsHighIterations(t *testing.T) {
	v := testView(t)
	seq := make([]complex128, v.Windows.High-v.Windows.Low)
	for _, c := range []complex128{complex(0.3, 0.3), complex(-1.4, 0), complex(0.1, 0.6)} {
		res := Evaluate(v, seq, c)
		if res.Calculated > v.Windows.High {
			t.Errorf("Evaluate(%v): Calculated = %d exceeds High = %d", c, res.Calculated, v.Windows.High)
		}
		if res.Contribute > res.Calculated {
			t.Errorf("Evaluate(%v): Contribute %d exceeds Calculated %d", c, res.Contribute, res.Calculated)
		}
	}
}
