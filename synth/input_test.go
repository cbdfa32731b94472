package synth

import "testing"

func TestInputParamAppliesAtOffset(t *testing.T) {
	p := NewInputParam(48000, 0, Smoothing{})
	p.Begin()
	p.UpdateAt(10, 1)
	p.Finish(16)
	out := p.Values()
	if len(out) != 16 {
		t.Fatalf("len = %d, want 16", len(out))
	}
	for i := 0; i < 10; i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %v before update", i, out[i])
		}
	}
	for i := 10; i < 16; i++ {
		if out[i] != 1 {
			t.Fatalf("out[%d] = %v after update", i, out[i])
		}
	}
}

func TestInputParamLinearSmoothing(t *testing.T) {
	// 1 ms at 48 kHz is 48 samples
	p := NewInputParam(48000, 0, Smoothing{Style: SmoothLinear, TimeMS: 1})
	p.Begin()
	p.UpdateAt(0, 1)
	p.Finish(64)
	out := p.Values()
	if !approxEqual(out[23], 0.5, 1e-4) {
		t.Fatalf("halfway = %v, want 0.5", out[23])
	}
	for i := 1; i < 48; i++ {
		if out[i] <= out[i-1] {
			t.Fatalf("ramp not increasing at %d", i)
		}
	}
	if out[47] != 1 || out[63] != 1 {
		t.Fatalf("ramp should land on target: %v %v", out[47], out[63])
	}
}

func TestInputParamExponentialSmoothing(t *testing.T) {
	p := NewInputParam(48000, 0, Smoothing{Style: SmoothExponential, TimeMS: 2})
	p.Begin()
	p.UpdateAt(0, 1)
	p.Finish(200)
	out := p.Values()
	if out[0] <= 0 || out[0] >= 0.5 {
		t.Fatalf("first step = %v", out[0])
	}
	if out[95] != 1 {
		t.Fatalf("smoother should settle on target after its time, got %v", out[95])
	}
}

func TestFrequencyInputFollowsBend(t *testing.T) {
	f := NewFrequencyInput(48000, 69, 0)
	f.Begin()
	f.Bend.UpdateAt(2, 12)
	f.Finish(4)
	out := f.Values()
	if !approxEqual(out[0], 440, 1) {
		t.Fatalf("A4 = %v, want 440", out[0])
	}
	if !approxEqual(out[3], 880, 2) {
		t.Fatalf("A4 + 12 = %v, want 880", out[3])
	}
}
