package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform is a closed-form periodic shape over unit phase.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
)

var waveformNames = [...]string{"sine", "saw", "square", "triangle"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// ParseWaveform accepts the names produced by String.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if strings.EqualFold(s, name) {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("unknown waveform %q", s)
}

// Sample evaluates the waveform at phase in [0,1). Output is in [-1,1].
func (w Waveform) Sample(phase float32) float32 {
	switch w {
	case WaveSaw:
		return phase*2 - 1
	case WaveSquare:
		if phase > 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return float32(math.Abs(math.Mod(4*float64(phase)+3, 4)-2)) - 1
	default:
		return float32(math.Sin(2 * math.Pi * float64(phase)))
	}
}
