package synth

import "testing"

func TestInterpolateUnityLinearAtZeroCurvature(t *testing.T) {
	for i := 0; i <= 100; i++ {
		x := float32(i) / 100
		if got := interpolateUnity(x, 0); !approxEqual(got, x, 1e-3) {
			t.Fatalf("interpolateUnity(%v, 0) = %v", x, got)
		}
	}
}

func TestInterpolateUnityBends(t *testing.T) {
	for _, k := range []float32{-8, -2, 2, 8} {
		if got := interpolateUnity(0, k); !approxEqual(got, 0, 1e-3) {
			t.Fatalf("k=%v: f(0) = %v, want 0", k, got)
		}
		if got := interpolateUnity(1, k); !approxEqual(got, 1, 1e-3) {
			t.Fatalf("k=%v: f(1) = %v, want 1", k, got)
		}
		mid := interpolateUnity(0.5, k)
		if k > 0 && mid <= 0.5 {
			t.Fatalf("positive curvature should ease out, f(0.5) = %v", mid)
		}
		if k < 0 && mid >= 0.5 {
			t.Fatalf("negative curvature should ease in, f(0.5) = %v", mid)
		}
	}
}
