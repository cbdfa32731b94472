package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-wavesynth/synth"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

// File is the JSON schema for synth presets. Every field is optional and
// only overrides what it names.
type File struct {
	OutputGain          *float32 `json:"output_gain,omitempty"`
	PitchBendRange      *float32 `json:"pitch_bend_range,omitempty"`
	VelocitySensitivity *float32 `json:"velocity_sensitivity,omitempty"`
	DCBlock             *bool    `json:"dc_block,omitempty"`
	Polyphony           *int     `json:"polyphony,omitempty"`
	Seed                *int64   `json:"seed,omitempty"`
	NoiseLevel          *float32 `json:"noise_level,omitempty"`

	WavetablePath     string `json:"wavetable_path,omitempty"`
	WavetableSliceLen *int   `json:"wavetable_slice_len,omitempty"`
	WavetableCubic    *bool  `json:"wavetable_cubic,omitempty"`

	AftertouchSmoothing *SmoothingSetting `json:"aftertouch_smoothing,omitempty"`

	Envelopes   map[string]EnvelopeSetting   `json:"envelopes,omitempty"`
	LFOs        map[string]LFOSetting        `json:"lfos,omitempty"`
	Oscillators map[string]OscillatorSetting `json:"oscillators,omitempty"`
	Sub         *SubSetting                  `json:"sub,omitempty"`

	// Routes replaces the route list when present (an empty list clears it).
	Routes *[]RouteSetting `json:"routes,omitempty"`
}

type SmoothingSetting struct {
	Style  string   `json:"style,omitempty"`
	TimeMS *float32 `json:"time_ms,omitempty"`
}

type EnvelopeSetting struct {
	Attack       *float32 `json:"attack,omitempty"`
	Decay        *float32 `json:"decay,omitempty"`
	Sustain      *float32 `json:"sustain,omitempty"`
	Release      *float32 `json:"release,omitempty"`
	AttackCurve  *float32 `json:"attack_curve,omitempty"`
	DecayCurve   *float32 `json:"decay_curve,omitempty"`
	ReleaseCurve *float32 `json:"release_curve,omitempty"`
}

type LFOSetting struct {
	Freq     *float32 `json:"freq,omitempty"`
	Phase    *float32 `json:"phase,omitempty"`
	Waveform string   `json:"waveform,omitempty"`
}

type OscillatorSetting struct {
	Transpose *float32 `json:"transpose,omitempty"`
	Timbre    *float32 `json:"timbre,omitempty"`
	Level     *float32 `json:"level,omitempty"`
	Unison    *int     `json:"unison,omitempty"`
	Detune    *float32 `json:"detune,omitempty"`
	Spread    *float32 `json:"spread,omitempty"`
	// Phase is "random" or "zero".
	Phase string `json:"phase,omitempty"`
}

type SubSetting struct {
	Octave   *float32 `json:"octave,omitempty"`
	Waveform string   `json:"waveform,omitempty"`
	Level    *float32 `json:"level,omitempty"`
}

type RouteSetting struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Amount   float32 `json:"amount"`
	Polarity string  `json:"polarity,omitempty"`
}

// Wavetable names the source file for the oscillators' table.
type Wavetable struct {
	Path     string
	SliceLen int
	Cubic    bool
}

// BuildOptions returns the wavetable build options the preset asks for.
func (w Wavetable) BuildOptions() []wavetable.Option {
	if w.Cubic {
		return []wavetable.Option{wavetable.WithInterpolation(wavetable.InterpCubic)}
	}
	return nil
}

// Preset is a resolved preset: engine parameters plus the wavetable source.
type Preset struct {
	Params    *synth.Params
	Wavetable Wavetable
}

// NewDefault returns the default preset with the built-in wavetable.
func NewDefault() *Preset {
	return &Preset{
		Params:    synth.NewDefaultParams(),
		Wavetable: Wavetable{SliceLen: wavetable.DefaultSliceLen},
	}
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
// A relative wavetable path is resolved against the preset's directory.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := NewDefault()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.Wavetable.Path != "" && !filepath.IsAbs(p.Wavetable.Path) {
		base := filepath.Dir(path)
		p.Wavetable.Path = filepath.Clean(filepath.Join(base, p.Wavetable.Path))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset and
// validates the result.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil || dst.Params == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}
	p := dst.Params

	if f.OutputGain != nil {
		if *f.OutputGain <= 0 {
			return fmt.Errorf("output_gain must be > 0")
		}
		p.OutputGain = *f.OutputGain
	}
	setFloat(&p.PitchBendRange, f.PitchBendRange)
	setFloat(&p.VelocitySensitivity, f.VelocitySensitivity)
	setFloat(&p.NoiseLevel, f.NoiseLevel)
	if f.DCBlock != nil {
		p.DCBlock = *f.DCBlock
	}
	if f.Polyphony != nil {
		p.Polyphony = *f.Polyphony
	}
	if f.Seed != nil {
		p.Seed = *f.Seed
	}

	if f.WavetablePath != "" {
		dst.Wavetable.Path = strings.TrimSpace(f.WavetablePath)
	}
	if f.WavetableSliceLen != nil {
		dst.Wavetable.SliceLen = *f.WavetableSliceLen
	}
	if f.WavetableCubic != nil {
		dst.Wavetable.Cubic = *f.WavetableCubic
	}
	if n := dst.Wavetable.SliceLen; n < wavetable.SliceResolution || n%wavetable.SliceResolution != 0 {
		return fmt.Errorf("wavetable_slice_len must be a positive multiple of %d", wavetable.SliceResolution)
	}

	if s := f.AftertouchSmoothing; s != nil {
		if s.Style != "" {
			style, err := parseSmoothing(s.Style)
			if err != nil {
				return fmt.Errorf("aftertouch_smoothing.style: %w", err)
			}
			p.AftertouchSmoothing.Style = style
		}
		setFloat(&p.AftertouchSmoothing.TimeMS, s.TimeMS)
	}

	err := eachIndex("envelopes", f.Envelopes, synth.NumEnvelopes, func(i int, s EnvelopeSetting) error {
		e := &p.Envelopes[i]
		setFloat(&e.Attack, s.Attack)
		setFloat(&e.Decay, s.Decay)
		setFloat(&e.Sustain, s.Sustain)
		setFloat(&e.Release, s.Release)
		setFloat(&e.AttackCurve, s.AttackCurve)
		setFloat(&e.DecayCurve, s.DecayCurve)
		setFloat(&e.ReleaseCurve, s.ReleaseCurve)
		return nil
	})
	if err != nil {
		return err
	}

	err = eachIndex("lfos", f.LFOs, synth.NumLFOs, func(i int, s LFOSetting) error {
		l := &p.LFOs[i]
		setFloat(&l.Freq, s.Freq)
		setFloat(&l.Phase, s.Phase)
		if s.Waveform != "" {
			w, err := synth.ParseWaveform(s.Waveform)
			if err != nil {
				return fmt.Errorf("lfos[%d].waveform: %w", i, err)
			}
			l.Waveform = w
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = eachIndex("oscillators", f.Oscillators, synth.NumOscillators, func(i int, s OscillatorSetting) error {
		o := &p.Oscillators[i]
		setFloat(&o.Transpose, s.Transpose)
		setFloat(&o.Timbre, s.Timbre)
		setFloat(&o.Level, s.Level)
		setFloat(&o.Detune, s.Detune)
		setFloat(&o.Spread, s.Spread)
		if s.Unison != nil {
			o.Unison = *s.Unison
		}
		switch strings.ToLower(s.Phase) {
		case "":
		case "random":
			o.Phase = synth.UnisonPhaseRandom
		case "zero":
			o.Phase = synth.UnisonPhaseZero
		default:
			return fmt.Errorf("oscillators[%d].phase: unknown value %q", i, s.Phase)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s := f.Sub; s != nil {
		setFloat(&p.Sub.Octave, s.Octave)
		setFloat(&p.Sub.Level, s.Level)
		if s.Waveform != "" {
			w, err := synth.ParseWaveform(s.Waveform)
			if err != nil {
				return fmt.Errorf("sub.waveform: %w", err)
			}
			p.Sub.Waveform = w
		}
	}

	if f.Routes != nil {
		routes := make([]synth.ModRoute, 0, len(*f.Routes))
		for i, r := range *f.Routes {
			route, err := parseRoute(r)
			if err != nil {
				return fmt.Errorf("routes[%d]: %w", i, err)
			}
			routes = append(routes, route)
		}
		p.Routes = routes
	}

	return p.Validate()
}

func setFloat(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

// eachIndex visits map entries keyed by a decimal slot index in key order.
func eachIndex[T any](name string, m map[string]T, n int, fn func(int, T) error) error {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= n {
			return fmt.Errorf("invalid %s key %q (expected 0..%d)", name, k, n-1)
		}
		if err := fn(i, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func parseSmoothing(s string) (synth.SmoothingStyle, error) {
	switch strings.ToLower(s) {
	case "none":
		return synth.SmoothNone, nil
	case "linear":
		return synth.SmoothLinear, nil
	case "exponential":
		return synth.SmoothExponential, nil
	}
	return 0, fmt.Errorf("unknown smoothing style %q", s)
}

func smoothingName(s synth.SmoothingStyle) string {
	switch s {
	case synth.SmoothLinear:
		return "linear"
	case synth.SmoothExponential:
		return "exponential"
	}
	return "none"
}

func parseRoute(r RouteSetting) (synth.ModRoute, error) {
	src, err := synth.ParseSourceKind(r.Source)
	if err != nil {
		return synth.ModRoute{}, err
	}
	tgt, err := synth.ParseTarget(r.Target)
	if err != nil {
		return synth.ModRoute{}, err
	}
	pol := synth.Monopolar
	if r.Polarity != "" {
		if pol, err = synth.ParsePolarity(r.Polarity); err != nil {
			return synth.ModRoute{}, err
		}
	}
	route := synth.ModRoute{Source: src, Target: tgt, Amount: r.Amount, Polarity: pol}
	return route, route.Validate()
}
