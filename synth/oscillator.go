package synth

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-wavesynth/dsp"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

// MaxUnison is the largest supported unison voice count.
const MaxUnison = 16

var (
	oscFreqRange = Exponential(0.5, 20000)
	timbreRange  = Linear(0, 1)
	levelRange   = Linear(0, 1)
)

// UnisonPhase picks each unison voice's start phase.
type UnisonPhase int

const (
	UnisonPhaseRandom UnisonPhase = iota
	UnisonPhaseZero
)

// OscillatorParams configures one wavetable oscillator.
type OscillatorParams struct {
	// Transpose in semitones relative to the played note.
	Transpose float32
	Timbre    float32
	Level     float32

	Unison int
	// Detune is the spread of the outermost unison voices in cents.
	Detune float32
	// Spread is the stereo width of the unison stack in [0,1].
	Spread float32
	Phase  UnisonPhase
}

type unisonVoice struct {
	phase  float32
	gain   float32
	ratio  float32
	gainL  float32
	gainR  float32
	offset float32
}

// Oscillator is a wavetable oscillator with a unison stack.
type Oscillator struct {
	sampleRate float32

	Freq   Param
	Timbre Param
	Level  Param

	transpose float32
	phaseMode UnisonPhase
	voices    [MaxUnison]unisonVoice
	n         int

	left  []float32
	right []float32
}

func NewOscillator(sampleRate float32, p OscillatorParams) Oscillator {
	o := Oscillator{
		sampleRate: sampleRate,
		Freq:       NewParam(0, oscFreqRange),
		Timbre:     NewParam(p.Timbre, timbreRange),
		Level:      NewParam(p.Level, levelRange),
	}
	o.Set(p)
	return o
}

// Set applies new parameters. Unison layout changes keep existing phases.
func (o *Oscillator) Set(p OscillatorParams) {
	o.transpose = p.Transpose
	o.Timbre.Rebase(p.Timbre)
	o.Level.Rebase(p.Level)
	o.phaseMode = p.Phase

	n := min(max(p.Unison, 1), MaxUnison)
	o.n = n
	spread := min(max(p.Spread, 0), 1)
	for i := 0; i < n; i++ {
		v := &o.voices[i]
		v.gain = float32(1+min(i, n-i-1)) / float32((n+1)/2)
		v.offset = 0
		if n > 1 {
			v.offset = float32(2*i)/float32(n-1) - 1
		}
		v.ratio = centsToRatio(p.Detune * v.offset)
		theta := float64(v.offset*spread+1) * math.Pi / 4
		// centre voice stays at unity on both sides
		v.gainL = float32(math.Cos(theta) * math.Sqrt2)
		v.gainR = float32(math.Sin(theta) * math.Sqrt2)
	}
}

// KeyTrackRatio is the frequency multiplier applied to the note pitch.
func (o *Oscillator) KeyTrackRatio() float32 {
	return semitonesToRatio(o.transpose)
}

func (o *Oscillator) Voices() int {
	return o.n
}

// Restart sets the start phases for a new note.
func (o *Oscillator) Restart(rng *rand.Rand) {
	for i := 0; i < o.n; i++ {
		if o.phaseMode == UnisonPhaseRandom && rng != nil {
			o.voices[i].phase = rng.Float32()
		} else {
			o.voices[i].phase = 0
		}
	}
}

// Render produces n stereo samples from table. A nil table renders silence
// but still resolves the parameters for the block.
func (o *Oscillator) Render(table *wavetable.Wavetable, triggerAt, n int) {
	freq := o.Freq.Take(n)
	timbre := o.Timbre.Take(n)
	level := o.Level.Take(n)
	o.left = growBuffer(o.left, n)
	o.right = growBuffer(o.right, n)
	if table == nil {
		clearBuffer(o.left)
		clearBuffer(o.right)
		return
	}
	voices := o.voices[:o.n]
	for i := 0; i < n; i++ {
		var l, r float32
		for j := range voices {
			v := &voices[j]
			s := table.Sample(v.phase, timbre[i]) * v.gain
			l += s * v.gainL
			r += s * v.gainR
		}
		o.left[i] = l * level[i]
		o.right[i] = r * level[i]
		if i >= triggerAt {
			for j := range voices {
				v := &voices[j]
				v.phase = dsp.IncrementPhase(v.phase, o.sampleRate, freq[i]*v.ratio)
			}
		}
	}
}

// Output returns the last rendered stereo block.
func (o *Oscillator) Output() (left, right []float32) {
	return o.left, o.right
}
