package synth

import "fmt"

const (
	// MaxPolyphony is the number of voices a Synth preallocates.
	MaxPolyphony = 16

	NumEnvelopes   = 2
	NumLFOs        = 2
	NumOscillators = 2

	// DefaultPitchBendRange is the bend in semitones at full deflection.
	DefaultPitchBendRange = 48
)

// Params holds all instrument parameters.
type Params struct {
	// Envelopes[0] is the amplitude envelope and decides when a voice ends.
	Envelopes   [NumEnvelopes]ADSRParams
	LFOs        [NumLFOs]LFOParams
	Oscillators [NumOscillators]OscillatorParams
	Sub         SubOscParams
	NoiseLevel  float32

	Routes []ModRoute

	PitchBendRange      float32
	AftertouchSmoothing Smoothing
	// VelocitySensitivity blends from fixed gain (0) to full velocity
	// scaling (1).
	VelocitySensitivity float32

	OutputGain float32
	DCBlock    bool

	// Polyphony limits the pool below MaxPolyphony.
	Polyphony int
	// Seed drives random start phases and noise chunk selection.
	Seed int64
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Envelopes: [NumEnvelopes]ADSRParams{
			{Attack: 0.005, Decay: 0.3, Sustain: 0.7, Release: 0.25},
			{Attack: 0.01, Decay: 0.6, Sustain: 0, Release: 0.3, DecayCurve: 2},
		},
		LFOs: [NumLFOs]LFOParams{
			{Freq: 5, Phase: 0, Waveform: WaveSine},
			{Freq: 0.3, Phase: -1, Waveform: WaveTriangle},
		},
		Oscillators: [NumOscillators]OscillatorParams{
			{Level: 0.8, Unison: 1, Phase: UnisonPhaseZero},
			{Level: 0, Unison: 3, Detune: 15, Spread: 0.5, Phase: UnisonPhaseRandom},
		},
		Sub:        SubOscParams{Octave: 1, Waveform: WaveSine, Level: 0},
		NoiseLevel: 0,
		Routes: []ModRoute{
			{Source: SourceEnv2, Target: TargetOsc1Timbre, Amount: 0.3, Polarity: Monopolar},
		},
		PitchBendRange:      DefaultPitchBendRange,
		AftertouchSmoothing: Smoothing{Style: SmoothLinear, TimeMS: 5},
		VelocitySensitivity: 1,
		OutputGain:          0.5,
		DCBlock:             false,
		Polyphony:           MaxPolyphony,
		Seed:                1,
	}
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	c := *p
	c.Routes = append([]ModRoute(nil), p.Routes...)
	return &c
}

func checkRange(name string, v float32, r ParamRange) error {
	if !isFinite(v) {
		return fmt.Errorf("%s must be finite", name)
	}
	if v < r.Lo() || v > r.Max {
		return fmt.Errorf("%s must be in [%g, %g], got %g", name, r.Lo(), r.Max, v)
	}
	return nil
}

func checkFinite(name string, v float32) error {
	if !isFinite(v) {
		return fmt.Errorf("%s must be finite", name)
	}
	return nil
}

// Validate returns the first invalid field.
func (p *Params) Validate() error {
	for i, e := range p.Envelopes {
		prefix := fmt.Sprintf("envelopes[%d]", i)
		if err := checkRange(prefix+".attack", e.Attack, Linear(0, envTimeRange.Max)); err != nil {
			return err
		}
		if err := checkRange(prefix+".decay", e.Decay, Linear(0, envTimeRange.Max)); err != nil {
			return err
		}
		if err := checkRange(prefix+".sustain", e.Sustain, envSustainRange); err != nil {
			return err
		}
		if err := checkRange(prefix+".release", e.Release, Linear(0, envTimeRange.Max)); err != nil {
			return err
		}
		if err := checkFinite(prefix+".attack_curve", e.AttackCurve); err != nil {
			return err
		}
		if err := checkFinite(prefix+".decay_curve", e.DecayCurve); err != nil {
			return err
		}
		if err := checkFinite(prefix+".release_curve", e.ReleaseCurve); err != nil {
			return err
		}
	}
	for i, l := range p.LFOs {
		prefix := fmt.Sprintf("lfos[%d]", i)
		if err := checkRange(prefix+".freq", l.Freq, lfoFreqRange); err != nil {
			return err
		}
		if err := checkFinite(prefix+".phase", l.Phase); err != nil {
			return err
		}
		if l.Phase >= 1 {
			return fmt.Errorf("%s.phase must be < 1 (negative for random)", prefix)
		}
		if l.Waveform < WaveSine || l.Waveform > WaveTriangle {
			return fmt.Errorf("%s.waveform is unknown", prefix)
		}
	}
	for i, o := range p.Oscillators {
		prefix := fmt.Sprintf("oscillators[%d]", i)
		if err := checkFinite(prefix+".transpose", o.Transpose); err != nil {
			return err
		}
		if err := checkRange(prefix+".timbre", o.Timbre, timbreRange); err != nil {
			return err
		}
		if err := checkRange(prefix+".level", o.Level, levelRange); err != nil {
			return err
		}
		if o.Unison < 1 || o.Unison > MaxUnison {
			return fmt.Errorf("%s.unison must be in [1, %d], got %d", prefix, MaxUnison, o.Unison)
		}
		if err := checkRange(prefix+".detune", o.Detune, Linear(0, 1200)); err != nil {
			return err
		}
		if err := checkRange(prefix+".spread", o.Spread, Linear(0, 1)); err != nil {
			return err
		}
	}
	if err := checkRange("sub.octave", p.Sub.Octave, Linear(0, 4)); err != nil {
		return err
	}
	if err := checkRange("sub.level", p.Sub.Level, levelRange); err != nil {
		return err
	}
	if p.Sub.Waveform < WaveSine || p.Sub.Waveform > WaveTriangle {
		return fmt.Errorf("sub.waveform is unknown")
	}
	if err := checkRange("noise_level", p.NoiseLevel, levelRange); err != nil {
		return err
	}
	for i, r := range p.Routes {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("routes[%d]: %w", i, err)
		}
	}
	if err := checkRange("pitch_bend_range", p.PitchBendRange, Linear(0, 96)); err != nil {
		return err
	}
	if p.AftertouchSmoothing.Style < SmoothNone || p.AftertouchSmoothing.Style > SmoothExponential {
		return fmt.Errorf("aftertouch_smoothing.style is unknown")
	}
	if err := checkRange("aftertouch_smoothing.time_ms", p.AftertouchSmoothing.TimeMS, Linear(0, 1000)); err != nil {
		return err
	}
	if err := checkRange("velocity_sensitivity", p.VelocitySensitivity, Linear(0, 1)); err != nil {
		return err
	}
	if err := checkRange("output_gain", p.OutputGain, Linear(0, 16)); err != nil {
		return err
	}
	if p.Polyphony < 1 || p.Polyphony > MaxPolyphony {
		return fmt.Errorf("polyphony must be in [1, %d], got %d", MaxPolyphony, p.Polyphony)
	}
	return nil
}
