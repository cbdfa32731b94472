package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/algo-wavesynth/synth"
)

// ToFile converts a preset into a fully populated File.
func ToFile(p *Preset) *File {
	src := p.Params
	f := &File{
		OutputGain:          ptr(src.OutputGain),
		PitchBendRange:      ptr(src.PitchBendRange),
		VelocitySensitivity: ptr(src.VelocitySensitivity),
		DCBlock:             ptr(src.DCBlock),
		Polyphony:           ptr(src.Polyphony),
		Seed:                ptr(src.Seed),
		NoiseLevel:          ptr(src.NoiseLevel),
		WavetablePath:       p.Wavetable.Path,
		WavetableSliceLen:   ptr(p.Wavetable.SliceLen),
		WavetableCubic:      ptr(p.Wavetable.Cubic),
		AftertouchSmoothing: &SmoothingSetting{
			Style:  smoothingName(src.AftertouchSmoothing.Style),
			TimeMS: ptr(src.AftertouchSmoothing.TimeMS),
		},
		Envelopes:   make(map[string]EnvelopeSetting, synth.NumEnvelopes),
		LFOs:        make(map[string]LFOSetting, synth.NumLFOs),
		Oscillators: make(map[string]OscillatorSetting, synth.NumOscillators),
		Sub: &SubSetting{
			Octave:   ptr(src.Sub.Octave),
			Waveform: src.Sub.Waveform.String(),
			Level:    ptr(src.Sub.Level),
		},
	}
	for i, e := range src.Envelopes {
		f.Envelopes[strconv.Itoa(i)] = EnvelopeSetting{
			Attack: ptr(e.Attack), Decay: ptr(e.Decay), Sustain: ptr(e.Sustain), Release: ptr(e.Release),
			AttackCurve: ptr(e.AttackCurve), DecayCurve: ptr(e.DecayCurve), ReleaseCurve: ptr(e.ReleaseCurve),
		}
	}
	for i, l := range src.LFOs {
		f.LFOs[strconv.Itoa(i)] = LFOSetting{Freq: ptr(l.Freq), Phase: ptr(l.Phase), Waveform: l.Waveform.String()}
	}
	for i, o := range src.Oscillators {
		phase := "random"
		if o.Phase == synth.UnisonPhaseZero {
			phase = "zero"
		}
		f.Oscillators[strconv.Itoa(i)] = OscillatorSetting{
			Transpose: ptr(o.Transpose), Timbre: ptr(o.Timbre), Level: ptr(o.Level),
			Unison: ptr(o.Unison), Detune: ptr(o.Detune), Spread: ptr(o.Spread), Phase: phase,
		}
	}
	routes := make([]RouteSetting, 0, len(src.Routes))
	for _, r := range src.Routes {
		routes = append(routes, RouteSetting{
			Source:   r.Source.String(),
			Target:   r.Target.String(),
			Amount:   r.Amount,
			Polarity: r.Polarity.String(),
		})
	}
	f.Routes = &routes
	return f
}

// SaveJSON writes p as an indented preset file. A wavetable path inside the
// preset's directory is stored relative to it.
func SaveJSON(path string, p *Preset) error {
	if p == nil || p.Params == nil {
		return fmt.Errorf("nil preset")
	}
	f := ToFile(p)
	f.WavetablePath = presetRelPath(path, f.WavetablePath)
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// presetRelPath rewrites target relative to the preset's directory when it
// lives below it, and makes it absolute otherwise.
func presetRelPath(presetPath, target string) string {
	if target == "" {
		return ""
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	dir, err := filepath.Abs(filepath.Dir(presetPath))
	if err != nil {
		return abs
	}
	if rel, err := filepath.Rel(dir, abs); err == nil && filepath.IsLocal(rel) {
		return filepath.ToSlash(rel)
	}
	return abs
}

func ptr[T any](v T) *T {
	return &v
}
