package synth

import "github.com/cwbudde/algo-wavesynth/dsp"

// SubOscParams configures the sub-oscillator. Octave is how many octaves
// below the played note it sounds.
type SubOscParams struct {
	Octave   float32
	Waveform Waveform
	Level    float32
}

// SubOscillator is a single closed-form oscillator tracking the note pitch.
type SubOscillator struct {
	sampleRate float32
	Freq       Param
	Level      Param
	waveform   Waveform
	ratio      float32
	phase      float32
	buf        []float32
}

func NewSubOscillator(sampleRate float32, p SubOscParams) SubOscillator {
	s := SubOscillator{
		sampleRate: sampleRate,
		Freq:       NewParam(0, oscFreqRange),
		Level:      NewParam(p.Level, levelRange),
	}
	s.Set(p)
	return s
}

func (s *SubOscillator) Set(p SubOscParams) {
	s.waveform = p.Waveform
	s.ratio = pow2Approx(-p.Octave)
	s.Level.Rebase(p.Level)
}

// KeyTrackRatio is the frequency multiplier applied to the note pitch.
func (s *SubOscillator) KeyTrackRatio() float32 {
	return s.ratio
}

func (s *SubOscillator) Restart() {
	s.phase = 0
}

func (s *SubOscillator) Render(triggerAt, n int) {
	freq := s.Freq.Take(n)
	s.buf = growBuffer(s.buf, n)
	for i := 0; i < n; i++ {
		s.buf[i] = s.waveform.Sample(s.phase)
		if i >= triggerAt {
			s.phase = dsp.IncrementPhase(s.phase, s.sampleRate, freq[i])
		}
	}
}

func (s *SubOscillator) SourceBuffer() ([]float32, Polarity) {
	return s.buf, Bipolar
}
