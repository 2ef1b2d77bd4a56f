package buddhabrot

import "testing"

func TestAccumulatorAddIsElementwiseSum(t *testing.T) {
	a := NewAccumulator(4)
	b := NewAccumulator(4)
	a.Raw[0] = 3
	b.Raw[0] = 5
	b.Raw[1] = 7

	a.Add(b)

	if a.Raw[0] != 8 {
		t.Errorf("Raw[0] = %d, want 8", a.Raw[0])
	}
	if a.Raw[1] != 7 {
		t.Errorf("Raw[1] = %d, want 7", a.Raw[1])
	}
}

func TestAccumulatorReset(t *testing.T) {
	a := NewAccumulator(2)
	for i := range a.Raw {
		a.Raw[i] = 42
	}
	a.Reset()
	for i, v := range a.Raw {
		if v != 0 {
			t.Errorf("Raw[%d] = %d after Reset, want 0", i, v)
		}
	}
}

func TestAccumulatorMaxima(t *testing.T) {
	a := NewAccumulator(2)
	a.Raw[0], a.Raw[1], a.Raw[2] = 1, 9, 3
	a.Raw[3], a.Raw[4], a.Raw[5] = 5, 2, 30

	maxR, maxG, maxB := a.Maxima()
	if maxR != 5 || maxG != 9 || maxB != 30 {
		t.Errorf("Maxima() = (%d,%d,%d), want (5,9,30)", maxR, maxG, maxB)
	}
}

func TestDrawPointDepositsBothMirrorPoints(t *testing.T) {
	w := mustWindows(t, 0, 10, 0, 10, 0, 10)
	v, err := NewView(complex(0, 0), 100, 100, 100, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	acc := NewAccumulator(v.Size)

	DrawPoint(acc, v, complex(0.1, 0.1), ChannelMask{R: true, G: true, B: true})

	var total uint64
	for _, c := range acc.Raw {
		total += c
	}
	if total != 6 {
		t.Errorf("total deposited = %d, want 6 (2 pixels x 3 channels)", total)
	}
}

func TestDrawPointOutOfRangeIsDropped(t *testing.T) {
	w := mustWindows(t, 0, 10, 0, 10, 0, 10)
	v, err := NewView(complex(0, 0), 100, 100, 100, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	acc := NewAccumulator(v.Size)

	DrawPoint(acc, v, complex(100, 100), ChannelMask{R: true, G: true, B: true})

	for i, c := range acc.Raw {
		if c != 0 {
			t.Fatalf("Raw[%d] = %d, want 0 for a point far outside the view", i, c)
		}
	}
}

func TestDrawPointRespectsChannelMask(t *testing.T) {
	w := mustWindows(t, 0, 10, 0, 10, 0, 10)
	v, err := NewView(complex(0, 0), 100, 100, 100, w)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	acc := NewAccumulator(v.Size)

	DrawPoint(acc, v, complex(0.1, 0.1), ChannelMask{R: true})

	x := int((0.1 - v.MinRe) * v.Scale)
	y := int((v.MaxIm - 0.1) * v.Scale)
	base := (y*v.W + x) * 3
	if acc.Raw[base+0] != 1 {
		t.Errorf("red channel = %d, want 1", acc.Raw[base+0])
	}
	if acc.Raw[base+1] != 0 || acc.Raw[base+2] != 0 {
		t.Errorf("green/blue channels = %d/%d, want 0/0", acc.Raw[base+1], acc.Raw[base+2])
	}
}
