package synth

// SmoothingStyle selects how an InputParam moves toward a new target.
type SmoothingStyle int

const (
	SmoothNone SmoothingStyle = iota
	// SmoothLinear reaches the target in a fixed time.
	SmoothLinear
	// SmoothExponential is a one-pole approach.
	SmoothExponential
)

// Smoothing configures an InputParam's smoother. TimeMS is the ramp time
// for SmoothLinear and the time to cover ~99.99% of the distance for
// SmoothExponential.
type Smoothing struct {
	Style  SmoothingStyle
	TimeMS float32
}

type smoother struct {
	cfg     Smoothing
	current float32
	target  float32
	step    float32
	coeff   float32
	steps   int
}

func (s *smoother) reset(v float32) {
	s.current = v
	s.target = v
	s.steps = 0
}

func (s *smoother) setTarget(sampleRate, v float32) {
	s.target = v
	n := int(s.cfg.TimeMS / 1000 * sampleRate)
	if s.cfg.Style == SmoothNone || n <= 0 {
		s.current = v
		s.steps = 0
		return
	}
	s.steps = n
	switch s.cfg.Style {
	case SmoothLinear:
		s.step = (v - s.current) / float32(n)
	case SmoothExponential:
		// 1e-4 of the distance left after n samples
		s.coeff = 1 - pow2Approx(-13.287712/float32(n))
	}
}

func (s *smoother) next() float32 {
	if s.steps == 0 {
		return s.current
	}
	s.steps--
	switch s.cfg.Style {
	case SmoothLinear:
		s.current += s.step
	case SmoothExponential:
		s.current += (s.target - s.current) * s.coeff
	}
	if s.steps == 0 {
		s.current = s.target
	}
	return s.current
}

// InputParam turns timed host values (pressure, pitch bend) into a
// per-sample buffer. Per block: Begin, any number of UpdateAt in offset
// order, then Finish.
type InputParam struct {
	sampleRate float32
	s          smoother
	buf        []float32
}

func NewInputParam(sampleRate, start float32, smoothing Smoothing) InputParam {
	p := InputParam{sampleRate: sampleRate, s: smoother{cfg: smoothing}}
	p.s.reset(start)
	return p
}

// Reset jumps to v without smoothing.
func (p *InputParam) Reset(v float32) {
	p.s.reset(v)
}

// Begin starts a new block.
func (p *InputParam) Begin() {
	p.buf = p.buf[:0]
}

func (p *InputParam) extendTo(n int) {
	for len(p.buf) < n {
		p.buf = append(p.buf, p.s.next())
	}
}

// UpdateAt sets a new target taking effect at sample offset.
func (p *InputParam) UpdateAt(offset int, v float32) {
	p.extendTo(offset)
	p.s.setTarget(p.sampleRate, v)
}

// Finish fills the block up to n samples.
func (p *InputParam) Finish(n int) {
	p.extendTo(n)
	p.buf = p.buf[:n]
}

// Current is the latest smoothed value.
func (p *InputParam) Current() float32 {
	return p.s.current
}

// Target is the value the smoother is heading to.
func (p *InputParam) Target() float32 {
	return p.s.target
}

func (p *InputParam) Values() []float32 {
	return p.buf
}

// SourceBuffer makes an input usable as a monopolar modulation source.
func (p *InputParam) SourceBuffer() ([]float32, Polarity) {
	return p.buf, Monopolar
}

// FrequencyInput is a voice's pitch: its MIDI note plus a pitch-bend input
// in semitones, rendered to Hz per sample.
type FrequencyInput struct {
	note float32
	Bend InputParam
	freq []float32
}

func NewFrequencyInput(sampleRate float32, note uint8, bendSemitones float32) FrequencyInput {
	return FrequencyInput{
		note: float32(note),
		Bend: NewInputParam(sampleRate, bendSemitones, Smoothing{}),
	}
}

// Retune switches to a new note and bend without smoothing.
func (f *FrequencyInput) Retune(note uint8, bendSemitones float32) {
	f.note = float32(note)
	f.Bend.Reset(bendSemitones)
}

func (f *FrequencyInput) Begin() {
	f.Bend.Begin()
}

// Finish renders n samples of frequency in Hz.
func (f *FrequencyInput) Finish(n int) {
	f.Bend.Finish(n)
	f.freq = growBuffer(f.freq, n)
	for i, b := range f.Bend.Values() {
		f.freq[i] = midiNoteToFreq(f.note + b)
	}
}

// Values returns the last rendered frequencies in Hz.
func (f *FrequencyInput) Values() []float32 {
	return f.freq
}
