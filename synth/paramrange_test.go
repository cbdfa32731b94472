package synth

import (
	"math"
	"testing"
)

func TestExponentialRoundTrip(t *testing.T) {
	ranges := []ParamRange{Exponential(0.5, 20000), Exponential(0.001, 100), Exponential(0.01, 100)}
	for _, r := range ranges {
		for i := 0; i <= 200; i++ {
			x := r.Min + (r.Max-r.Min)*float32(i)/200
			got := r.Denormalize(r.Normalize(x))
			// relative for large values, absolute near the bottom
			tol := math.Max(1e-4, 1e-6*float64(x))
			if math.Abs(float64(got-x)) > tol {
				t.Fatalf("%v: round trip %v -> %v", r, x, got)
			}
		}
	}
}

func TestExponentialEndpoints(t *testing.T) {
	r := Exponential(0.5, 20000)
	if got := r.Normalize(0.5); got != 0 {
		t.Fatalf("Normalize(min) = %v, want 0", got)
	}
	if got := r.Normalize(20000); !approxEqual(got, 1, 1e-6) {
		t.Fatalf("Normalize(max) = %v, want 1", got)
	}
	if got := r.Normalize(0); got != 0 {
		t.Fatalf("below range should clamp to 0, got %v", got)
	}
	if got := r.Denormalize(2); !approxEqual(got, 20000, 0.01) {
		t.Fatalf("Denormalize(2) = %v, want clamp to max", got)
	}
	// geometric midpoint sits halfway
	if got := r.Normalize(100); !approxEqual(got, 0.5, 1e-5) {
		t.Fatalf("Normalize(100) = %v, want 0.5", got)
	}
}

func TestExponentialToZeroMapsZero(t *testing.T) {
	r := ExponentialToZero(0.01, 1)
	if got := r.Normalize(0); got != 0 {
		t.Fatalf("Normalize(0) = %v, want 0", got)
	}
	if got := r.Denormalize(0); !approxEqual(got, 0, 1e-7) {
		t.Fatalf("Denormalize(0) = %v, want 0", got)
	}
	if got := r.Normalize(1); !approxEqual(got, 1, 1e-6) {
		t.Fatalf("Normalize(max) = %v, want 1", got)
	}
	for _, x := range []float32{0, 0.01, 0.2, 0.5, 0.9, 1} {
		if got := r.Denormalize(r.Normalize(x)); !approxEqual(got, x, 1e-5) {
			t.Fatalf("round trip %v -> %v", x, got)
		}
	}
}

func TestLinearClamps(t *testing.T) {
	r := Linear(-2, 2)
	cases := []struct {
		in, want float32
	}{
		{-2, 0}, {0, 0.5}, {2, 1}, {-5, 0}, {7, 1},
	}
	for _, c := range cases {
		if got := r.Normalize(c.in); !approxEqual(got, c.want, 1e-6) {
			t.Fatalf("Normalize(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if got := r.Denormalize(0.25); got != -1 {
		t.Fatalf("Denormalize(0.25) = %v, want -1", got)
	}
	if got := r.Normalize(float32(math.NaN())); got != 0 {
		t.Fatalf("NaN should clamp to 0, got %v", got)
	}
}
