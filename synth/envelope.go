package synth

import "github.com/cwbudde/algo-wavesynth/dsp"

var (
	envTimeRange    = Exponential(0.001, 100)
	envSustainRange = ExponentialToZero(0.01, 1)
)

// ADSRParams are the stage times in seconds, sustain level and per-stage
// curvature of an envelope.
type ADSRParams struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32

	AttackCurve  float32
	DecayCurve   float32
	ReleaseCurve float32
}

// ADSR is an attack/decay/sustain/release shaper driven entirely by a
// voice's NoteState.
type ADSR struct {
	attack  FixedParam
	decay   FixedParam
	sustain FixedParam
	release FixedParam

	attackCurve  Curve
	decayCurve   Curve
	releaseCurve Curve

	// resolved stage values for the current block
	a, d, s, r float32

	buf []float32
}

func NewADSR(p ADSRParams) ADSR {
	e := ADSR{}
	e.attack = NewFixedParam(0, envTimeRange)
	e.decay = NewFixedParam(0, envTimeRange)
	e.sustain = NewFixedParam(0, envSustainRange)
	e.release = NewFixedParam(0, envTimeRange)
	e.Set(p)
	return e
}

// Set rebases every stage.
func (e *ADSR) Set(p ADSRParams) {
	e.attack.Rebase(p.Attack)
	e.decay.Rebase(p.Decay)
	e.sustain.Rebase(p.Sustain)
	e.release.Rebase(p.Release)
	e.attackCurve = Curve(p.AttackCurve)
	e.decayCurve = Curve(p.DecayCurve)
	e.releaseCurve = Curve(p.ReleaseCurve)
	e.resolve()
}

func (e *ADSR) resolve() {
	e.a = e.attack.Take()
	e.d = e.decay.Take()
	e.s = e.sustain.Take()
	e.r = e.release.Take()
}

// Value is the envelope level for the given times in seconds.
func (e *ADSR) Value(sinceTrigger, sinceRelease float32) float32 {
	if sinceTrigger < 0 {
		return 0
	}
	var v float32
	switch {
	case sinceTrigger < e.a:
		v = e.attackCurve.apply(sinceTrigger / e.a)
	case sinceTrigger < e.a+e.d:
		v = dsp.Lerp(e.decayCurve.apply((sinceTrigger-e.a)/e.d), 1, e.s)
	default:
		v = e.s
	}
	switch {
	case sinceRelease < 0:
	case sinceRelease < e.r:
		v *= 1 - e.releaseCurve.apply(sinceRelease/e.r)
	default:
		v = 0
	}
	return v
}

// IsEnded reports whether a voice at this state has fallen silent for good:
// the release has run out, or sustain is zero and decay has finished.
func (e *ADSR) IsEnded(st NoteStateSnapshot) bool {
	if !st.Triggered {
		return false
	}
	if st.SinceRelease >= 0 && st.SinceRelease > e.r {
		return true
	}
	return e.s == 0 && st.SinceTrigger > e.a+e.d
}

// Render fills the block buffer from per-sample note states.
func (e *ADSR) Render(states []NoteStateSnapshot) {
	e.resolve()
	e.buf = growBuffer(e.buf, len(states))
	for i, st := range states {
		e.buf[i] = e.Value(st.SinceTrigger, st.SinceRelease)
	}
}

func (e *ADSR) SourceBuffer() ([]float32, Polarity) {
	return e.buf, Monopolar
}
