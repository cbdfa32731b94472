package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

type rowReport struct {
	Position  float64   `json:"position"`
	Centroid  float64   `json:"centroid"`
	Bandwidth int       `json:"bandwidth"`
	DC        float64   `json:"dc"`
	Peak      float64   `json:"peak"`
	Top       []partial `json:"top"`
}

type partial struct {
	Harmonic  int     `json:"harmonic"`
	Amplitude float64 `json:"amplitude"`
}

func main() {
	tablePath := flag.String("wavetable", "", "Wavetable WAV path (default: built-in table)")
	sliceLen := flag.Int("slice-len", wavetable.DefaultSliceLen, "Samples per source slice")
	cubic := flag.Bool("cubic", false, "Use cubic slice upsampling")
	removeMean := flag.Bool("remove-mean", false, "Remove DC from each slice before upsampling")
	rows := flag.Int("rows", 8, "Number of evenly spaced timbre positions to analyse")
	top := flag.Int("top", 5, "Strongest harmonics to list per row")
	floorDB := flag.Float64("floor-db", 60, "Bandwidth floor below the strongest harmonic in dB")
	exportPos := flag.Float64("export-position", -1, "Timbre position in [0,1] to export as audio (negative disables)")
	exportFreq := flag.Float64("export-freq", 110, "Playback frequency of the exported row in Hz")
	exportDur := flag.Float64("export-duration", 1.0, "Duration of the exported row in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Sample rate of the exported row")
	output := flag.String("output", "row.wav", "Export WAV path")
	jsonOut := flag.Bool("json", false, "Print report as JSON")
	flag.Parse()

	var opts []wavetable.Option
	if *cubic {
		opts = append(opts, wavetable.WithInterpolation(wavetable.InterpCubic))
	}
	if *removeMean {
		opts = append(opts, wavetable.WithMeanRemoval())
	}

	table := wavetable.Default()
	name := "built-in"
	if *tablePath != "" {
		var err error
		table, err = wavetable.LoadWAV(*tablePath, *sliceLen, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading wavetable: %v\n", err)
			os.Exit(1)
		}
		name = *tablePath
	}

	reports, err := inspect(table, max(*rows, 1), max(*top, 1), *floorDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *exportPos >= 0 {
		data := playRow(table, float32(*exportPos), *exportFreq, *exportDur, *sampleRate)
		if err := audioio.WriteMonoWAV(*output, data, *sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s (%d frames)\n", *output, len(data))
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Wavetable %s: %d slices, %dx%d grid\n\n", name, table.Slices(), wavetable.Size, wavetable.Size)
	fmt.Printf("Position  Centroid  Bandwidth      DC    Peak  Top harmonics\n")
	for _, r := range reports {
		fmt.Printf("%8.3f  %8.2f  %9d  %+6.3f  %6.3f ", r.Position, r.Centroid, r.Bandwidth, r.DC, r.Peak)
		for _, p := range r.Top {
			fmt.Printf(" h%d=%.3f", p.Harmonic, p.Amplitude)
		}
		fmt.Println()
	}
}

func inspect(table *wavetable.Wavetable, rows, top int, floorDB float64) ([]rowReport, error) {
	out := make([]rowReport, 0, rows)
	for i := 0; i < rows; i++ {
		pos := 0.0
		if rows > 1 {
			pos = float64(i) / float64(rows-1)
		}
		row := table.Row(float32(pos))
		h, err := analysis.HarmonicSpectrum(row)
		if err != nil {
			return nil, err
		}
		var peak float64
		for _, v := range row {
			peak = max(peak, float64(abs32(v)))
		}
		out = append(out, rowReport{
			Position:  pos,
			Centroid:  analysis.Centroid(h),
			Bandwidth: analysis.Bandwidth(h, floorDB),
			DC:        h[0],
			Peak:      peak,
			Top:       strongest(h, top),
		})
	}
	return out, nil
}

func strongest(h []float64, n int) []partial {
	parts := make([]partial, 0, len(h)-1)
	for k := 1; k < len(h); k++ {
		if h[k] > 1e-6 {
			parts = append(parts, partial{Harmonic: k, Amplitude: h[k]})
		}
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Amplitude > parts[j].Amplitude })
	return parts[:min(n, len(parts))]
}

// playRow renders one timbre row as a plain oscillator.
func playRow(table *wavetable.Wavetable, pos float32, freq, dur float64, sampleRate int) []float32 {
	n := max(int(dur*float64(sampleRate)), 1)
	out := make([]float32, n)
	inc := freq / float64(sampleRate)
	phase := 0.0
	for i := range out {
		out[i] = table.Sample(float32(phase), pos)
		phase += inc
		phase -= float64(int(phase))
	}
	return out
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
