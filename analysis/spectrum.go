package analysis

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// HarmonicSpectrum returns the amplitude of harmonics 0..len(cycle)/2 of a
// single waveform cycle. Index 0 is the DC offset; index k is the k-th
// harmonic scaled so that a full-scale sine reads 1.
func HarmonicSpectrum(cycle []float32) ([]float64, error) {
	n := len(cycle)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("cycle length must be a power of two >= 2, got %d", n)
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, err
	}
	in := make([]float64, n)
	for i, v := range cycle {
		in[i] = float64(v)
	}
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, in)

	out := make([]float64, len(spec))
	scale := 2 / float64(n)
	for k, c := range spec {
		out[k] = math.Hypot(real(c), imag(c)) * scale
	}
	out[0] *= 0.5
	out[n/2] *= 0.5
	return out, nil
}

// Centroid is the amplitude-weighted mean harmonic number, ignoring DC.
// It is 0 for a silent cycle.
func Centroid(harmonics []float64) float64 {
	var num, den float64
	for k := 1; k < len(harmonics); k++ {
		num += float64(k) * harmonics[k]
		den += harmonics[k]
	}
	if den <= 0 {
		return 0
	}
	return num / den
}

// Bandwidth is the highest harmonic whose amplitude is within floorDB of
// the strongest one.
func Bandwidth(harmonics []float64, floorDB float64) int {
	var peak float64
	for k := 1; k < len(harmonics); k++ {
		peak = max(peak, harmonics[k])
	}
	if peak <= 0 {
		return 0
	}
	limit := peak * math.Pow(10, -math.Abs(floorDB)/20)
	top := 0
	for k := 1; k < len(harmonics); k++ {
		if harmonics[k] >= limit {
			top = k
		}
	}
	return top
}
