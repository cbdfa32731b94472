package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (default: built-in preset)")
	outputPreset := flag.String("output-preset", "assets/presets/fitted.json", "Path to write best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	note := flag.Int("note", 69, "MIDI note to fit")
	velocity := flag.Int("velocity", 100, "Initial MIDI velocity")
	releaseAfter := flag.Float64("release-after", 1.0, "Initial note-off time in seconds")
	groupsRaw := flag.String("optimize", "env", "Comma-separated knob groups: env,timbre,render")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 4000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	checkpointEvery := flag.Int("checkpoint-every", 1, "Write checkpoint every N best-score improvements")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds")
	maxDuration := flag.Float64("max-duration", 15.0, "Maximum render duration in seconds")
	workersRaw := flag.String("workers", "auto", "Parallel optimization workers (integer >= 1 or 'auto')")
	writeBestCandidate := flag.String("write-best-candidate", "", "Optional WAV path to write best candidate render")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *note < 0 || *note > 127 {
		die("note must be in [0, 127]")
	}
	workers, err := parseWorkers(*workersRaw)
	if err != nil {
		die("invalid -workers: %v", err)
	}
	groups, err := parseOptimizeGroups(*groupsRaw)
	if err != nil {
		die("invalid -optimize: %v", err)
	}
	*reportEvery = max(*reportEvery, 1)
	*checkpointEvery = max(*checkpointEvery, 1)
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, *mayflyPop*2)

	base := preset.NewDefault()
	if *presetPath != "" {
		if base, err = preset.LoadJSON(*presetPath); err != nil {
			die("failed to load preset: %v", err)
		}
	}
	table := wavetable.NewHandle(nil)
	if base.Wavetable.Path != "" {
		w, err := wavetable.LoadWAV(base.Wavetable.Path, base.Wavetable.SliceLen, base.Wavetable.BuildOptions()...)
		if err != nil {
			die("failed to load wavetable: %v", err)
		}
		table.Store(w)
	}

	ref, refSR, err := audioio.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = audioio.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	rs := renderSettings{velocity: *velocity, releaseAfter: *releaseAfter}
	defs, initCand := initCandidate(base.Params, rs, groups)
	out := &outputConfig{
		outputPreset:  *outputPreset,
		reportPath:    *reportPath,
		referencePath: *referencePath,
		presetPath:    *presetPath,
		sampleRate:    *sampleRate,
		note:          *note,
		variant:       strings.ToLower(*mayflyVariant),
		base:          base,
		baseRender:    rs,
		defs:          defs,
	}
	if *resume {
		if resumed, ok, err := loadCandidateFromReport(out.report(), defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", out.report(), err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", out.report())
		}
	}

	cfg := &optimizationConfig{
		reference:        ref,
		baseParams:       base.Params,
		baseRender:       rs,
		table:            table,
		defs:             defs,
		initCandidate:    initCand,
		note:             uint8(*note),
		sampleRate:       *sampleRate,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		checkpointEvery:  *checkpointEvery,
		decayDBFS:        *decayDBFS,
		minDuration:      *minDuration,
		maxDuration:      *maxDuration,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          workers,
		checkpoint: func(best candidate, m analysis.Metrics, evals int, elapsed float64) error {
			return writeOutputs(out, best, m, evals, elapsed)
		},
	}
	if _, err := newMayflyConfig(out.variant, *mayflyPop, len(defs), 1); err != nil {
		die("invalid mayfly variant: %v", err)
	}

	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}
	if err := writeOutputs(out, res.best, res.bestMetrics, res.evals, res.elapsed); err != nil {
		die("failed to write outputs: %v", err)
	}

	if *writeBestCandidate != "" {
		p, brs := fittedParams(out, res.best)
		mono, err := renderCandidate(cfg, p, brs)
		if err == nil {
			mono32 := make([]float32, len(mono))
			for i, v := range mono {
				mono32[i] = float32(v)
			}
			err = audioio.WriteMonoWAV(*writeBestCandidate, mono32, *sampleRate)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to write best candidate wav: %v\n", err)
		}
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n", res.evals, res.elapsed, res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, out.variant)
}
