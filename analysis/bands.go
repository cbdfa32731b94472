package analysis

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

// Band is a frequency range in Hz.
type Band struct {
	Name string  `json:"name"`
	LoHz float64 `json:"lo_hz"`
	HiHz float64 `json:"hi_hz"`
}

// TimeWindow is a time range in milliseconds from the start of a signal.
type TimeWindow struct {
	Name    string  `json:"name"`
	StartMs float64 `json:"start_ms"`
	EndMs   float64 `json:"end_ms"`
}

// BandDiff compares one band of two averaged spectra.
type BandDiff struct {
	Band   Band    `json:"band"`
	RMSEDB float64 `json:"rmse_db"`
	RefDB  float64 `json:"ref_db"`
	CandDB float64 `json:"cand_db"`
}

// WindowReport holds the band differences over one time window.
type WindowReport struct {
	Window TimeWindow `json:"window"`
	Frames int        `json:"frames"`
	Bands  []BandDiff `json:"bands"`
}

var DefaultBands = []Band{
	{"sub-bass (20-100Hz)", 20, 100},
	{"bass (100-300Hz)", 100, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

var DefaultWindows = []TimeWindow{
	{"attack (0-20ms)", 0, 20},
	{"early (20-100ms)", 20, 100},
	{"sustain (100-500ms)", 100, 500},
	{"decay (0.5-2s)", 500, 2000},
	{"late (2-4s)", 2000, 4000},
}

// BandReport averages STFT magnitudes of ref and cand over each time
// window and compares them per band. Windows shorter than fftSize use a
// single zero-padded frame; windows starting past the end are skipped.
func BandReport(ref, cand []float64, sampleRate, fftSize int, windows []TimeWindow, bands []Band) ([]WindowReport, error) {
	if fftSize < 4 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 4, got %d", fftSize)
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, err
	}
	hann, err := window.Hann(fftSize)
	if err != nil {
		return nil, err
	}
	n := min(len(ref), len(cand))
	hop := fftSize / 2
	nBins := fftSize / 2
	binHz := float64(sampleRate) / float64(fftSize)

	spec := make([]complex128, fftSize/2+1)
	buf := make([]float64, fftSize)
	accumulate := func(dst []float64, x []float64, pos, length int) {
		clear(buf)
		for i := 0; i < length; i++ {
			buf[i] = x[pos+i] * hann[i]
		}
		plan.Forward(spec, buf)
		for k := 1; k < nBins; k++ {
			dst[k] += math.Hypot(real(spec[k]), imag(spec[k]))
		}
	}

	var out []WindowReport
	for _, tw := range windows {
		start := int(tw.StartMs / 1000.0 * float64(sampleRate))
		end := min(int(tw.EndMs/1000.0*float64(sampleRate)), n)
		if start >= end {
			continue
		}

		avgRef := make([]float64, nBins)
		avgCand := make([]float64, nBins)
		frames := 0
		for pos := start; pos+fftSize <= end; pos += hop {
			accumulate(avgRef, ref, pos, fftSize)
			accumulate(avgCand, cand, pos, fftSize)
			frames++
		}
		if frames == 0 {
			length := min(end-start, fftSize)
			accumulate(avgRef, ref, start, length)
			accumulate(avgCand, cand, start, length)
			frames = 1
		}
		scale := 1.0 / float64(frames)
		for k := range avgRef {
			avgRef[k] *= scale
			avgCand[k] *= scale
		}

		wr := WindowReport{Window: tw, Frames: frames}
		for _, b := range bands {
			loK := max(int(b.LoHz/binHz), 1)
			hiK := min(int(b.HiHz/binHz), nBins-1)
			if loK > hiK {
				continue
			}
			var sumSq, refPow, candPow float64
			cnt := float64(hiK - loK + 1)
			for k := loK; k <= hiK; k++ {
				d := linToDB(avgRef[k]) - linToDB(avgCand[k])
				sumSq += d * d
				refPow += avgRef[k] * avgRef[k]
				candPow += avgCand[k] * avgCand[k]
			}
			wr.Bands = append(wr.Bands, BandDiff{
				Band:   b,
				RMSEDB: math.Sqrt(sumSq / cnt),
				RefDB:  10 * math.Log10(max(refPow/cnt, 1e-24)),
				CandDB: 10 * math.Log10(max(candPow/cnt, 1e-24)),
			})
		}
		out = append(out, wr)
	}
	return out, nil
}
