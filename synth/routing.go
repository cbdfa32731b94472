package synth

import (
	"errors"
	"fmt"
	"strings"
)

// SourceKind names a per-voice modulation source.
type SourceKind int

const (
	SourceEnv1 SourceKind = iota
	SourceEnv2
	SourceLFO1
	SourceLFO2
	SourceAftertouch
	SourceNoise
	numSourceKinds
)

var sourceNames = [numSourceKinds]string{"env1", "env2", "lfo1", "lfo2", "aftertouch", "noise"}

func (s SourceKind) String() string {
	if s < 0 || s >= numSourceKinds {
		return fmt.Sprintf("SourceKind(%d)", int(s))
	}
	return sourceNames[s]
}

func ParseSourceKind(s string) (SourceKind, error) {
	for i, name := range sourceNames {
		if strings.EqualFold(s, name) {
			return SourceKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown modulation source %q", s)
}

// Target names a modulatable parameter of a voice.
type Target int

const (
	TargetOsc1Freq Target = iota
	TargetOsc1Timbre
	TargetOsc1Level
	TargetOsc2Freq
	TargetOsc2Timbre
	TargetOsc2Level
	TargetSubFreq
	TargetSubLevel
	TargetNoiseLevel
	TargetLFO1Freq
	TargetLFO2Freq
	numTargets
)

var targetNames = [numTargets]string{
	"osc1.freq", "osc1.timbre", "osc1.level",
	"osc2.freq", "osc2.timbre", "osc2.level",
	"sub.freq", "sub.level", "noise.level",
	"lfo1.freq", "lfo2.freq",
}

func (t Target) String() string {
	if t < 0 || t >= numTargets {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return targetNames[t]
}

func ParseTarget(s string) (Target, error) {
	for i, name := range targetNames {
		if strings.EqualFold(s, name) {
			return Target(i), nil
		}
	}
	return 0, fmt.Errorf("unknown modulation target %q", s)
}

func (t Target) isLFOFreq() bool {
	return t == TargetLFO1Freq || t == TargetLFO2Freq
}

// ParsePolarity accepts "mono"/"monopolar" and "bi"/"bipolar".
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(s) {
	case "mono", "monopolar":
		return Monopolar, nil
	case "bi", "bipolar":
		return Bipolar, nil
	}
	return 0, fmt.Errorf("unknown polarity %q", s)
}

func (p Polarity) String() string {
	if p == Bipolar {
		return "bipolar"
	}
	return "monopolar"
}

var errRouteOrder = errors.New("lfo frequency can only be modulated by envelopes or aftertouch")

// ModRoute sends Source to Target, converted to Polarity and scaled by
// Amount in normalized units.
type ModRoute struct {
	Source   SourceKind
	Target   Target
	Amount   float32
	Polarity Polarity
}

// Validate checks that the route refers to known endpoints and can be
// rendered in order: LFOs are rendered before noise, so their frequency
// cannot depend on LFOs or noise.
func (r ModRoute) Validate() error {
	if r.Source < 0 || r.Source >= numSourceKinds {
		return fmt.Errorf("unknown modulation source %d", int(r.Source))
	}
	if r.Target < 0 || r.Target >= numTargets {
		return fmt.Errorf("unknown modulation target %d", int(r.Target))
	}
	if r.Polarity != Monopolar && r.Polarity != Bipolar {
		return fmt.Errorf("unknown polarity %d", int(r.Polarity))
	}
	if !isFinite(r.Amount) {
		return fmt.Errorf("amount must be finite")
	}
	if r.Target.isLFOFreq() {
		switch r.Source {
		case SourceEnv1, SourceEnv2, SourceAftertouch:
		default:
			return fmt.Errorf("%s -> %s: %w", r.Source, r.Target, errRouteOrder)
		}
	}
	return nil
}
