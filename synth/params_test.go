package synth

import (
	"strings"
	"testing"
)

func TestDefaultParamsAreValid(t *testing.T) {
	if err := NewDefaultParams().Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
}

func TestValidateReportsFieldPath(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Params)
		field  string
	}{
		{"lfo freq", func(p *Params) { p.LFOs[1].Freq = 0 }, "lfos[1].freq"},
		{"sustain", func(p *Params) { p.Envelopes[0].Sustain = 2 }, "envelopes[0].sustain"},
		{"unison", func(p *Params) { p.Oscillators[1].Unison = 0 }, "oscillators[1].unison"},
		{"level", func(p *Params) { p.Oscillators[0].Level = -0.1 }, "oscillators[0].level"},
		{"route", func(p *Params) {
			p.Routes = append(p.Routes, ModRoute{Source: SourceLFO1, Target: TargetLFO1Freq})
		}, "routes[1]"},
		{"polyphony", func(p *Params) { p.Polyphony = MaxPolyphony + 1 }, "polyphony"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewDefaultParams()
			c.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), c.field) {
				t.Fatalf("error %q does not name %q", err, c.field)
			}
		})
	}
}

func TestCloneCopiesRoutes(t *testing.T) {
	p := NewDefaultParams()
	c := p.Clone()
	c.Routes[0].Amount = 0.9
	if p.Routes[0].Amount == 0.9 {
		t.Fatalf("Clone shares the routes slice")
	}
}
