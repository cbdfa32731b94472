package dsp

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Biquad implements a second-order IIR filter (no heap allocations in Process)
type Biquad struct {
	// Coefficients
	b0, b1, b2 float32
	a1, a2     float32

	// State (previous samples)
	x1, x2 float32 // input history
	y1, y2 float32 // output history
}

// NewBiquad creates a new biquad filter with the given coefficients
func NewBiquad(b0, b1, b2, a1, a2 float32) *Biquad {
	return &Biquad{
		b0: b0,
		b1: b1,
		b2: b2,
		a1: a1,
		a2: a2,
	}
}

// Process processes one sample through the biquad filter
func (b *Biquad) Process(input float32) float32 {
	// Direct Form I
	output := b.b0*input + b.b1*b.x1 + b.b2*b.x2 - b.a1*b.y1 - b.a2*b.y2
	output = float32(dspcore.FlushDenormals(float64(output)))

	b.x2 = b.x1
	b.x1 = input
	b.y2 = b.y1
	b.y1 = output

	return output
}

// ProcessBlock filters buf in place.
func (b *Biquad) ProcessBlock(buf []float32) {
	for i, x := range buf {
		buf[i] = b.Process(x)
	}
}

// Reset clears the filter state
func (b *Biquad) Reset() {
	b.x1, b.x2 = 0, 0
	b.y1, b.y2 = 0, 0
}

// NewHighpass creates a RBJ highpass biquad filter.
func NewHighpass(cutoff, sampleRate, q float32) *Biquad {
	w0 := 2.0 * math.Pi * float64(cutoff) / float64(sampleRate)
	alpha := math.Sin(w0) / (2.0 * float64(q))
	cosw0 := math.Cos(w0)

	b0 := (1.0 + cosw0) / 2.0
	b1 := -(1.0 + cosw0)
	b2 := (1.0 + cosw0) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosw0
	a2 := 1.0 - alpha

	return NewBiquad(
		float32(b0/a0),
		float32(b1/a0),
		float32(b2/a0),
		float32(a1/a0),
		float32(a2/a0),
	)
}

// NewDCBlocker returns a gentle highpass that removes DC offset from a
// wavetable whose source slices are not zero-mean.
func NewDCBlocker(sampleRate float32) *Biquad {
	return NewHighpass(10, sampleRate, 0.7071)
}

// Lerp blends from a to b by t.
func Lerp(t, a, b float32) float32 {
	return a*(1-t) + b*t
}

// InvLerp returns where x sits between a and b (unclamped).
func InvLerp(x, a, b float32) float32 {
	if a == b {
		return 0
	}
	return (x - a) / (b - a)
}

// WrapUnit folds a phase back into [0,1) after a single step.
func WrapUnit(phase float32) float32 {
	if phase >= 1 || phase < 0 {
		phase -= float32(math.Floor(float64(phase)))
		// -tiny + 1 rounds to exactly 1 in float32
		if phase >= 1 {
			phase = 0
		}
	}
	return phase
}

// IncrementPhase advances a unit phase accumulator by freq/sampleRate.
func IncrementPhase(phase, sampleRate, freq float32) float32 {
	if sampleRate <= 0 {
		return phase
	}
	return WrapUnit(phase + freq/sampleRate)
}
