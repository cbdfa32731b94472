package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-wavesynth/synth"
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// renderSettings are the performance knobs that are not part of a preset.
type renderSettings struct {
	velocity     int
	releaseAfter float64
}

// parseOptimizeGroups parses a comma-separated string of group names.
// Valid groups: env, timbre, render.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{"env": true, "timbre": true, "render": true}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown optimize group %q (valid: env, timbre, render)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

func initCandidate(base *synth.Params, rs renderSettings, groups map[string]bool) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, 16)
	vals := make([]float64, 0, 16)
	addKnob := func(def knobDef, val float64) {
		defs = append(defs, def)
		vals = append(vals, val)
	}

	env := base.Envelopes[0]
	if groups["env"] {
		addKnob(knobDef{Name: "env1.attack", Min: 0.0005, Max: 2.0}, float64(env.Attack))
		addKnob(knobDef{Name: "env1.decay", Min: 0.005, Max: 8.0}, float64(env.Decay))
		addKnob(knobDef{Name: "env1.sustain", Min: 0.0, Max: 1.0}, float64(env.Sustain))
		addKnob(knobDef{Name: "env1.release", Min: 0.005, Max: 8.0}, float64(env.Release))
		addKnob(knobDef{Name: "env1.attack_curve", Min: -8, Max: 8}, float64(env.AttackCurve))
		addKnob(knobDef{Name: "env1.decay_curve", Min: -8, Max: 8}, float64(env.DecayCurve))
		addKnob(knobDef{Name: "env1.release_curve", Min: -8, Max: 8}, float64(env.ReleaseCurve))
	}

	if groups["timbre"] {
		osc1 := base.Oscillators[0]
		osc2 := base.Oscillators[1]
		addKnob(knobDef{Name: "osc1.timbre", Min: 0, Max: 1}, float64(osc1.Timbre))
		addKnob(knobDef{Name: "osc2.level", Min: 0, Max: 1}, float64(osc2.Level))
		addKnob(knobDef{Name: "osc2.detune", Min: 0, Max: 50}, float64(osc2.Detune))
		addKnob(knobDef{Name: "osc2.unison", Min: 1, Max: synth.MaxUnison, IsInt: true}, float64(osc2.Unison))
		addKnob(knobDef{Name: "sub.level", Min: 0, Max: 1}, float64(base.Sub.Level))
		addKnob(knobDef{Name: "noise_level", Min: 0, Max: 0.5}, float64(base.NoiseLevel))
	}

	if groups["render"] {
		addKnob(knobDef{Name: "render.velocity", Min: 1, Max: 127, IsInt: true}, float64(rs.velocity))
		addKnob(knobDef{Name: "render.release_after", Min: 0.05, Max: 5}, rs.releaseAfter)
	}

	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
		if defs[i].IsInt {
			vals[i] = math.Round(vals[i])
		}
	}
	return defs, candidate{Vals: vals}
}

func applyCandidate(base *synth.Params, rs renderSettings, defs []knobDef, c candidate) (*synth.Params, renderSettings) {
	params := base.Clone()
	env := &params.Envelopes[0]

	for i, def := range defs {
		v := c.Vals[i]
		switch def.Name {
		case "env1.attack":
			env.Attack = float32(v)
		case "env1.decay":
			env.Decay = float32(v)
		case "env1.sustain":
			env.Sustain = float32(v)
		case "env1.release":
			env.Release = float32(v)
		case "env1.attack_curve":
			env.AttackCurve = float32(v)
		case "env1.decay_curve":
			env.DecayCurve = float32(v)
		case "env1.release_curve":
			env.ReleaseCurve = float32(v)
		case "osc1.timbre":
			params.Oscillators[0].Timbre = float32(v)
		case "osc2.level":
			params.Oscillators[1].Level = float32(v)
		case "osc2.detune":
			params.Oscillators[1].Detune = float32(v)
		case "osc2.unison":
			params.Oscillators[1].Unison = int(math.Round(v))
		case "sub.level":
			params.Sub.Level = float32(v)
		case "noise_level":
			params.NoiseLevel = float32(v)
		case "render.velocity":
			rs.velocity = int(math.Round(v))
		case "render.release_after":
			rs.releaseAfter = v
		}
	}

	rs.velocity = min(max(rs.velocity, 1), 127)
	rs.releaseAfter = max(rs.releaseAfter, 0.05)
	return params, rs
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}
