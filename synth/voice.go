package synth

import (
	"math/rand"

	"github.com/cwbudde/algo-wavesynth/wavetable"
)

// Voice is one instance of the signal graph bound to a sounding note.
// Voices live in a Pool and are recycled in place.
type Voice struct {
	sampleRate float32
	id         NoteID
	state      NoteState
	velocity   float32
	velSens    float32

	freq       FrequencyInput
	aftertouch InputParam

	envs  [NumEnvelopes]ADSR
	lfos  [NumLFOs]LFO
	oscs  [NumOscillators]Oscillator
	sub   SubOscillator
	noise NoiseOscillator

	rng *rand.Rand

	states []NoteStateSnapshot
	gate   []float32
	left   []float32
	right  []float32
}

func newVoice(sampleRate float32, p *Params, seed int64) *Voice {
	v := &Voice{
		sampleRate: sampleRate,
		id:         NoteID{VoiceID: -1},
		freq:       NewFrequencyInput(sampleRate, 60, 0),
		aftertouch: NewInputParam(sampleRate, 0, p.AftertouchSmoothing),
		rng:        rand.New(rand.NewSource(seed)),
	}
	for i := range v.envs {
		v.envs[i] = NewADSR(p.Envelopes[i])
	}
	for i := range v.lfos {
		v.lfos[i] = NewLFO(sampleRate, p.LFOs[i])
	}
	for i := range v.oscs {
		v.oscs[i] = NewOscillator(sampleRate, p.Oscillators[i])
	}
	v.sub = NewSubOscillator(sampleRate, p.Sub)
	v.noise = NewNoiseOscillator(p.NoiseLevel, seed^0x6e6f697365)
	v.velSens = p.VelocitySensitivity
	return v
}

// apply rebases every component. Running phases and note state are kept.
func (v *Voice) apply(p *Params) {
	for i := range v.envs {
		v.envs[i].Set(p.Envelopes[i])
	}
	for i := range v.lfos {
		v.lfos[i].Set(p.LFOs[i])
	}
	for i := range v.oscs {
		v.oscs[i].Set(p.Oscillators[i])
	}
	v.sub.Set(p.Sub)
	v.noise.Level.Rebase(p.NoiseLevel)
	v.aftertouch.s.cfg = p.AftertouchSmoothing
	v.velSens = p.VelocitySensitivity
}

func (v *Voice) ID() NoteID {
	return v.id
}

func (v *Voice) State() *NoteState {
	return &v.state
}

// Status reports the voice's standing for allocation. A note still waiting
// for its trigger offset counts as younger than one that has started.
func (v *Voice) Status() SlotStatus {
	switch {
	case !v.state.Enabled() || v.state.Ended():
		return SlotStatus{Kind: SlotDisabled}
	case v.state.Held():
		return SlotStatus{Kind: SlotHeld, Age: v.state.SamplesSinceTrigger() - v.state.TriggerIn()}
	default:
		return SlotStatus{Kind: SlotReleased, Age: v.state.SamplesSinceRelease()}
	}
}

// Active reports whether the voice holds a note that has not ended.
func (v *Voice) Active() bool {
	return v.state.Enabled() && !v.state.Ended()
}

// beginBlock opens the per-block input buffers. It runs for every slot so
// that a note triggered mid-block starts from a clean buffer.
func (v *Voice) beginBlock() {
	v.freq.Begin()
	v.aftertouch.Begin()
}

func (v *Voice) trigger(id NoteID, velocity float32, offset int, bend, pressure float32) {
	v.id = id
	v.velocity = velocity
	v.state.Trigger(offset)
	v.freq.Retune(id.Note, bend)
	v.aftertouch.Reset(pressure)
	for i := range v.lfos {
		v.lfos[i].Restart(v.rng)
	}
	for i := range v.oscs {
		v.oscs[i].Restart(v.rng)
	}
	v.sub.Restart()
	v.noise.Restart()
}

func (v *Voice) release(offset int) {
	v.state.MarkReleasedIn(offset)
}

func (v *Voice) choke(offset int) {
	v.state.MarkChokeIn(offset)
}

func (v *Voice) setBend(offset int, semitones float32) {
	v.freq.Bend.UpdateAt(offset, semitones)
}

func (v *Voice) setPressure(offset int, pressure float32) {
	v.aftertouch.UpdateAt(offset, pressure)
}

func (v *Voice) source(k SourceKind) Source {
	switch k {
	case SourceEnv1:
		return &v.envs[0]
	case SourceEnv2:
		return &v.envs[1]
	case SourceLFO1:
		return &v.lfos[0]
	case SourceLFO2:
		return &v.lfos[1]
	case SourceAftertouch:
		return &v.aftertouch
	case SourceNoise:
		return &v.noise
	}
	return nil
}

func (v *Voice) target(t Target) *Param {
	switch t {
	case TargetOsc1Freq:
		return &v.oscs[0].Freq
	case TargetOsc1Timbre:
		return &v.oscs[0].Timbre
	case TargetOsc1Level:
		return &v.oscs[0].Level
	case TargetOsc2Freq:
		return &v.oscs[1].Freq
	case TargetOsc2Timbre:
		return &v.oscs[1].Timbre
	case TargetOsc2Level:
		return &v.oscs[1].Level
	case TargetSubFreq:
		return &v.sub.Freq
	case TargetSubLevel:
		return &v.sub.Level
	case TargetNoiseLevel:
		return &v.noise.Level
	case TargetLFO1Freq:
		return &v.lfos[0].Freq
	case TargetLFO2Freq:
		return &v.lfos[1].Freq
	}
	return nil
}

func (v *Voice) sendRoutes(routes []ModRoute, lfoFreq bool) {
	for _, r := range routes {
		if r.Target.isLFOFreq() != lfoFreq {
			continue
		}
		if p := v.target(r.Target); p != nil {
			p.Send(v.source(r.Source), r.Polarity, r.Amount)
		}
	}
}

// render produces n stereo samples into the voice buffers and marks the
// voice ended once the amplitude envelope has finished.
func (v *Voice) render(table *wavetable.Wavetable, routes []ModRoute, n int) {
	v.states = growStates(v.states, n)
	v.gate = growBuffer(v.gate, n)
	triggerAt := min(v.state.TriggerIn(), n)
	for i := 0; i < n; i++ {
		v.states[i] = v.state.Current(v.sampleRate)
		if v.state.Ended() {
			v.gate[i] = 0
		} else {
			v.gate[i] = 1
		}
		v.state.Tick()
	}

	v.freq.Finish(n)
	v.aftertouch.Finish(n)
	for i := range v.envs {
		v.envs[i].Render(v.states)
	}

	v.sendRoutes(routes, true)
	for i := range v.lfos {
		v.lfos[i].Render(triggerAt, n)
	}
	v.noise.Render(n)

	v.sendRoutes(routes, false)
	for i := range v.oscs {
		o := &v.oscs[i]
		o.Freq.SendKeyTrack(&v.freq, o.KeyTrackRatio())
		o.Render(table, triggerAt, n)
	}
	v.sub.Freq.SendKeyTrack(&v.freq, v.sub.KeyTrackRatio())
	v.sub.Render(triggerAt, n)
	subLevel := v.sub.Level.Take(n)
	noiseLevel := v.noise.Level.Take(n)

	v.left = growBuffer(v.left, n)
	v.right = growBuffer(v.right, n)
	amp, _ := v.envs[0].SourceBuffer()
	velGain := 1 - v.velSens + v.velSens*v.velocity
	for i := 0; i < n; i++ {
		mono := v.sub.buf[i]*subLevel[i] + v.noise.buf[i]*noiseLevel[i]
		l, r := mono, mono
		for j := range v.oscs {
			l += v.oscs[j].left[i]
			r += v.oscs[j].right[i]
		}
		g := amp[i] * velGain * v.gate[i]
		v.left[i] = l * g
		v.right[i] = r * g
	}

	if n > 0 && v.envs[0].IsEnded(v.states[n-1]) {
		v.state.MarkEnded()
	}
}

func growStates(buf []NoteStateSnapshot, n int) []NoteStateSnapshot {
	if cap(buf) < n {
		return make([]NoteStateSnapshot, n)
	}
	return buf[:n]
}
