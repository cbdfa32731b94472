package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-wavesynth/synth"
)

func TestParseOptimizeGroups(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]bool
		wantErr bool
	}{
		{name: "single group", input: "env", want: map[string]bool{"env": true}},
		{name: "multiple groups", input: "env,timbre", want: map[string]bool{"env": true, "timbre": true}},
		{name: "with whitespace", input: " env , render ", want: map[string]bool{"env": true, "render": true}},
		{name: "invalid group", input: "env,bogus", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "only whitespace", input: "  ,  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptimizeGroups(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOptimizeGroups(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOptimizeGroups(%q) error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k := range tt.want {
				if !got[k] {
					t.Fatalf("missing group %q in %v", k, got)
				}
			}
		})
	}
}

func TestInitCandidateClampsToKnobRanges(t *testing.T) {
	base := synth.NewDefaultParams()
	base.Envelopes[0].Attack = 50 // beyond env1.attack max
	rs := renderSettings{velocity: 300, releaseAfter: 1}
	defs, c := initCandidate(base, rs, map[string]bool{"env": true, "timbre": true, "render": true})
	if len(defs) != len(c.Vals) {
		t.Fatalf("defs/values length mismatch: %d vs %d", len(defs), len(c.Vals))
	}
	for i, d := range defs {
		if c.Vals[i] < d.Min || c.Vals[i] > d.Max {
			t.Fatalf("%s = %f outside [%f, %f]", d.Name, c.Vals[i], d.Min, d.Max)
		}
		if d.IsInt && c.Vals[i] != math.Round(c.Vals[i]) {
			t.Fatalf("%s should be integral, got %f", d.Name, c.Vals[i])
		}
	}
}

func TestInitCandidateGroupsSelectKnobs(t *testing.T) {
	defs, _ := initCandidate(synth.NewDefaultParams(), renderSettings{100, 1}, map[string]bool{"env": true})
	if len(defs) != 7 {
		t.Fatalf("env group should yield 7 knobs, got %d", len(defs))
	}
	for _, d := range defs {
		if d.Name[:5] != "env1." {
			t.Fatalf("unexpected knob %q in env group", d.Name)
		}
	}
}

func TestApplyCandidateRoundTrip(t *testing.T) {
	base := synth.NewDefaultParams()
	rs := renderSettings{velocity: 90, releaseAfter: 0.8}
	groups := map[string]bool{"env": true, "timbre": true, "render": true}
	defs, c := initCandidate(base, rs, groups)

	p, gotRS := applyCandidate(base, rs, defs, c)
	if p == base {
		t.Fatalf("applyCandidate must not alias the base params")
	}
	if p.Envelopes[0] != base.Envelopes[0] {
		t.Fatalf("identity candidate changed env1: %+v vs %+v", p.Envelopes[0], base.Envelopes[0])
	}
	if gotRS != rs {
		t.Fatalf("identity candidate changed render settings: %+v", gotRS)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("applied params invalid: %v", err)
	}

	for i, d := range defs {
		if d.Name == "env1.release" {
			c.Vals[i] = 2.5
		}
		if d.Name == "render.velocity" {
			c.Vals[i] = 0
		}
	}
	p, gotRS = applyCandidate(base, rs, defs, c)
	if p.Envelopes[0].Release != 2.5 {
		t.Fatalf("release knob not applied: %f", p.Envelopes[0].Release)
	}
	if base.Envelopes[0].Release == 2.5 {
		t.Fatalf("base params mutated")
	}
	if gotRS.velocity != 1 {
		t.Fatalf("velocity should clamp to 1, got %d", gotRS.velocity)
	}
}

func TestFromNormalized(t *testing.T) {
	defs := []knobDef{
		{Name: "a", Min: 0, Max: 10},
		{Name: "b", Min: 1, Max: 16, IsInt: true},
		{Name: "c", Min: -1, Max: 1},
	}
	c := fromNormalized([]float64{0.5, 0.51, 2}, defs)
	if c.Vals[0] != 5 {
		t.Fatalf("a = %f, want 5", c.Vals[0])
	}
	if c.Vals[1] != 9 {
		t.Fatalf("b = %f, want 9", c.Vals[1])
	}
	if c.Vals[2] != 1 {
		t.Fatalf("c = %f, want clamped 1", c.Vals[2])
	}
	short := fromNormalized(nil, defs)
	if short.Vals[0] != 0 || short.Vals[2] != -1 {
		t.Fatalf("missing positions should map to Min: %v", short.Vals)
	}
}

func TestParseWorkers(t *testing.T) {
	if n, err := parseWorkers("auto"); err != nil || n != 0 {
		t.Fatalf("auto: n=%d err=%v", n, err)
	}
	if n, err := parseWorkers(" 4 "); err != nil || n != 4 {
		t.Fatalf("4: n=%d err=%v", n, err)
	}
	for _, bad := range []string{"", "0", "-2", "many"} {
		if _, err := parseWorkers(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNewMayflyConfigVariants(t *testing.T) {
	for _, v := range []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"} {
		cfg, err := newMayflyConfig(v, 10, 7, 3)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if cfg.ProblemSize != 7 || cfg.NPop != 10 || cfg.NC != 20 || cfg.NM < 1 {
			t.Fatalf("%s: unexpected config %+v", v, cfg)
		}
	}
	if _, err := newMayflyConfig("nope", 10, 7, 3); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}
