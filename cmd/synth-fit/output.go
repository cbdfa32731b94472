package main

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-wavesynth/analysis"
	"github.com/cwbudde/algo-wavesynth/preset"
	"github.com/cwbudde/algo-wavesynth/synth"
)

type runReport struct {
	ReferencePath   string             `json:"reference_path"`
	PresetPath      string             `json:"preset_path"`
	OutputPreset    string             `json:"output_preset"`
	SampleRate      int                `json:"sample_rate"`
	Note            int                `json:"note"`
	Velocity        int                `json:"velocity"`
	ReleaseAfterSec float64            `json:"release_after_seconds"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestSimilarity  float64            `json:"best_similarity"`
	BestMetrics     analysis.Metrics   `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
}

type outputConfig struct {
	outputPreset  string
	reportPath    string
	referencePath string
	presetPath    string
	sampleRate    int
	note          int
	variant       string
	base          *preset.Preset
	baseRender    renderSettings
	defs          []knobDef
}

func (o *outputConfig) report() string {
	if o.reportPath == "" {
		return o.outputPreset + ".report.json"
	}
	return o.reportPath
}

// writeOutputs stores the fitted preset and a report that can seed a
// resumed run.
func writeOutputs(o *outputConfig, best candidate, bestM analysis.Metrics, evals int, elapsed float64) error {
	params, rs := applyCandidate(o.base.Params, o.baseRender, o.defs, best)
	if err := os.MkdirAll(filepath.Dir(o.outputPreset), 0o755); err != nil {
		return err
	}
	if err := preset.SaveJSON(o.outputPreset, &preset.Preset{Params: params, Wavetable: o.base.Wavetable}); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(o.defs))
	for i, d := range o.defs {
		knobs[d.Name] = best.Vals[i]
	}
	rep := runReport{
		ReferencePath:   o.referencePath,
		PresetPath:      o.presetPath,
		OutputPreset:    o.outputPreset,
		SampleRate:      o.sampleRate,
		Note:            o.note,
		Velocity:        rs.velocity,
		ReleaseAfterSec: rs.releaseAfter,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   o.variant,
		BestScore:       bestM.Score,
		BestSimilarity:  bestM.Similarity,
		BestMetrics:     sanitizeMetrics(bestM),
		BestKnobs:       knobs,
	}
	return writeJSON(o.report(), rep)
}

// sanitizeMetrics replaces NaN decay slopes, which JSON cannot encode.
func sanitizeMetrics(m analysis.Metrics) analysis.Metrics {
	for _, v := range []*float64{&m.RefDecayDBPerS, &m.CandDecayDBPerS} {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	return m
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}

	var rep struct {
		BestKnobs map[string]float64 `json:"best_knobs"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := append([]float64(nil), fallback.Vals...)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clamp(v, d.Min, d.Max)
			if d.IsInt {
				vals[i] = math.Round(vals[i])
			}
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

// fittedParams is used for the final best-candidate render.
func fittedParams(o *outputConfig, best candidate) (*synth.Params, renderSettings) {
	return applyCandidate(o.base.Params, o.baseRender, o.defs, best)
}
