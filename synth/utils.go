package synth

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// midiNoteToFreq converts a (fractional) MIDI note number to frequency in Hz.
func midiNoteToFreq(note float32) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	return a4Freq * pow2Approx((note-a4Note)/12.0)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func centsToRatio(cents float32) float32 {
	return pow2Approx(cents / 1200.0)
}

func semitonesToRatio(semi float32) float32 {
	return pow2Approx(semi / 12.0)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// growBuffer returns buf resized to n, reusing its backing array when it is
// large enough.
func growBuffer(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}

func clearBuffer(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
