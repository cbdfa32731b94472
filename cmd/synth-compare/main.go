package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/internal/render"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

type result struct {
	Metrics analysis.Metrics        `json:"metrics"`
	Bands   []analysis.WindowReport `json:"bands,omitempty"`
}

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render candidate from the synth")
	presetPath := flag.String("preset", "", "Preset JSON path for rendered candidate (default: built-in preset)")
	note := flag.Int("note", 69, "MIDI note for rendered candidate")
	velocity := flag.Int("velocity", 100, "MIDI velocity for rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS for rendered candidate")
	minDuration := flag.Float64("min-duration", 1.0, "Minimum rendered duration in seconds")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum rendered duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Note hold time before NoteOff for rendered candidate")
	fftSize := flag.Int("fft-size", 4096, "STFT size for the band report")
	bands := flag.Bool("bands", true, "Include per-band spectral comparison")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, refSR, err := audioio.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = audioio.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		candRaw, candSR, err := audioio.ReadWAVMono(*candidatePath)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
		cand, err = audioio.ResampleIfNeeded(candRaw, candSR, *sampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
	} else {
		if *note < 0 || *note > 127 || *velocity < 1 || *velocity > 127 {
			die("note must be in [0, 127] and velocity in [1, 127]")
		}
		stereo, err := renderCandidate(*presetPath, uint8(*note), *velocity, *sampleRate, *decayDBFS, *minDuration, *maxDuration, *releaseAfter)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = audioio.StereoToMono64(stereo)
		if *writeCandidate != "" {
			if err := audioio.WriteStereoInterleavedWAV(*writeCandidate, stereo, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	res := result{Metrics: analysis.Compare(ref, cand, *sampleRate)}
	if *bands {
		res.Bands, err = analysis.BandReport(ref, cand, *sampleRate, *fftSize, analysis.DefaultWindows, analysis.DefaultBands)
		if err != nil {
			die("band report failed: %v", err)
		}
	}

	if *jsonOut {
		for _, v := range []*float64{&res.Metrics.RefDecayDBPerS, &res.Metrics.CandDecayDBPerS} {
			if math.IsNaN(*v) {
				*v = 0
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	m := res.Metrics
	fmt.Printf("Reference frames: %d\n", m.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", m.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", m.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", m.LagSamples, 1000.0*float64(m.LagSamples)/float64(m.SampleRate))
	fmt.Printf("Envelope RMSE:    %.1f dB\n", m.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.1f dB\n", m.SpectralRMSEDB)
	fmt.Printf("Attack:           ref=%.3fs  cand=%.3fs\n", m.RefAttackS, m.CandAttackS)
	fmt.Printf("Decay slopes:     ref=%.1f dB/s  cand=%.1f dB/s\n", m.RefDecayDBPerS, m.CandDecayDBPerS)
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", m.Score)
	fmt.Printf("Similarity:       %.2f%%\n", m.Similarity*100.0)

	for _, w := range res.Bands {
		fmt.Printf("\n--- %s (%d STFT frames) ---\n", w.Window.Name, w.Frames)
		for _, b := range w.Bands {
			marker := ""
			if b.RMSEDB > 15 {
				marker = " <<<"
			}
			if b.RMSEDB > 25 {
				marker = " <<< !!!"
			}
			fmt.Printf("  %-22s RMSE=%5.1fdB  ref=%6.1fdB  cand=%6.1fdB  diff=%+5.1fdB%s\n",
				b.Band.Name, b.RMSEDB, b.RefDB, b.CandDB, b.CandDB-b.RefDB, marker)
		}
	}
}

func renderCandidate(
	presetPath string,
	note uint8,
	velocity int,
	sampleRate int,
	decayDBFS float64,
	minDuration float64,
	maxDuration float64,
	releaseAfter float64,
) ([]float32, error) {
	p := preset.NewDefault()
	if presetPath != "" {
		var err error
		if p, err = preset.LoadJSON(presetPath); err != nil {
			return nil, err
		}
	}
	table := wavetable.NewHandle(nil)
	if p.Wavetable.Path != "" {
		w, err := wavetable.LoadWAV(p.Wavetable.Path, p.Wavetable.SliceLen, p.Wavetable.BuildOptions()...)
		if err != nil {
			return nil, err
		}
		table.Store(w)
	}
	s, err := synth.NewSynth(sampleRate, p.Params, table)
	if err != nil {
		return nil, err
	}
	o := render.DefaultOptions()
	o.Notes = []uint8{note}
	o.Velocity = float32(velocity) / 127
	o.ReleaseAfter = releaseAfter
	o.DecayDBFS = decayDBFS
	o.MinDuration = minDuration
	o.MaxDuration = maxDuration
	return render.Notes(s, o)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
