package synth

import (
	"math/rand"

	"github.com/cwbudde/algo-wavesynth/dsp"
)

var lfoFreqRange = Exponential(0.01, 100)

// LFOParams configures a low-frequency oscillator. A negative Phase picks a
// random start phase per note.
type LFOParams struct {
	Freq     float32
	Phase    float32
	Waveform Waveform
}

// LFO is a free-running bipolar modulation source.
type LFO struct {
	sampleRate float32
	Freq       Param
	waveform   Waveform
	startPhase float32
	phase      float32
	buf        []float32
}

func NewLFO(sampleRate float32, p LFOParams) LFO {
	l := LFO{
		sampleRate: sampleRate,
		Freq:       NewParam(p.Freq, lfoFreqRange),
	}
	l.Set(p)
	return l
}

// Set applies new parameters without touching the running phase.
func (l *LFO) Set(p LFOParams) {
	l.Freq.Rebase(p.Freq)
	l.waveform = p.Waveform
	l.startPhase = p.Phase
}

// Restart picks the start phase for a new note.
func (l *LFO) Restart(rng *rand.Rand) {
	if l.startPhase < 0 && rng != nil {
		l.phase = rng.Float32()
		return
	}
	l.phase = dsp.WrapUnit(max(l.startPhase, 0))
}

// Render produces n samples. The phase holds still before triggerAt.
func (l *LFO) Render(triggerAt, n int) {
	freq := l.Freq.Take(n)
	l.buf = growBuffer(l.buf, n)
	for i := 0; i < n; i++ {
		l.buf[i] = l.waveform.Sample(l.phase)
		if i >= triggerAt {
			l.phase = dsp.IncrementPhase(l.phase, l.sampleRate, freq[i])
		}
	}
}

func (l *LFO) SourceBuffer() ([]float32, Polarity) {
	return l.buf, Bipolar
}
