package buddhabrot

import "testing"

func TestChannelMultiplierZeroMaxGivesZero(t *testing.T) {
	if m := channelMultiplier(0, 300, 1.0, 0.5); m != 0 {
		t.Errorf("channelMultiplier with max=0 = %v, want 0", m)
	}
}

func TestDefaultTonemapConfigDerived(t *testing.T) {
	c := DefaultTonemapConfig()
	realContrast, realLightness := c.derived()
	if realContrast <= 0 {
		t.Errorf("realContrast = %v, want > 0", realContrast)
	}
	if realLightness <= 0 {
		t.Errorf("realLightness = %v, want > 0", realLightness)
	}
}

func TestClamp255Bounds(t *testing.T) {
	if clamp255(-10) != 0 {
		t.Errorf("clamp255(-10) != 0")
	}
	if clamp255(1000) != 255 {
		t.Errorf("clamp255(1000) != 255")
	}
	if clamp255(128) != 128 {
		t.Errorf("clamp255(128) != 128")
	}
}

func TestChannelToneValueStaysWithinClampedRange(t *testing.T) {
	c := DefaultTonemapConfig()
	realContrast, realLightness := c.derived()
	mul := channelMultiplier(1000, 300, realContrast, realLightness)

	for _, raw := range []uint64{0, 1, 10, 1000, 1_000_000} {
		v := clamp255(channelToneValue(raw, realContrast, mul))
		if v < 0 || v > 255 {
			t.Errorf("channelToneValue(%d) clamped = %v, out of [0,255]", raw, v)
		}
	}
}
