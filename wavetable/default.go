package wavetable

import (
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// defaultSlices is the number of timbre snapshots in the built-in table.
// Slice k sums the first 2^k harmonics at 1/n amplitude, so the timbre
// axis sweeps from a pure sine to a bright saw-like wave.
const defaultSlices = 8

var (
	defaultOnce  sync.Once
	defaultTable *Wavetable
)

// Default returns the built-in table, building it on first use.
func Default() *Wavetable {
	defaultOnce.Do(func() {
		w, err := FromSlices(defaultSliceData())
		if err != nil {
			// every input is generated locally with a fixed shape
			panic("wavetable: default table: " + err.Error())
		}
		defaultTable = w
	})
	return defaultTable
}

func defaultSliceData() [][]float32 {
	// one cycle per slice: a sample rate of SliceResolution makes
	// harmonic n exactly n cycles long
	gen := signal.NewGenerator(core.WithSampleRate(SliceResolution))
	slices := make([][]float32, defaultSlices)
	harmonics := make(map[int][]float64)
	for k := range slices {
		top := 1 << k
		acc := make([]float64, SliceResolution)
		for n := 1; n <= top; n++ {
			h, ok := harmonics[n]
			if !ok {
				var err error
				h, err = gen.Sine(float64(n), 1/float64(n), SliceResolution)
				if err != nil {
					panic("wavetable: default harmonic: " + err.Error())
				}
				harmonics[n] = h
			}
			for i, v := range h {
				acc[i] += v
			}
		}
		normalized, err := signal.Normalize(acc, 0.9)
		if err != nil {
			panic("wavetable: default normalize: " + err.Error())
		}
		out := make([]float32, SliceResolution)
		for i, v := range normalized {
			out[i] = float32(v)
		}
		slices[k] = out
	}
	return slices
}
