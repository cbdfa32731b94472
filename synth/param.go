package synth

// Polarity declares the natural range of a modulation signal.
type Polarity int

const (
	// Monopolar signals live in [0,1].
	Monopolar Polarity = iota
	// Bipolar signals live in [-1,1].
	Bipolar
)

// Source is anything that produces a per-sample modulation buffer for the
// current block.
type Source interface {
	SourceBuffer() ([]float32, Polarity)
}

func convertPolarity(v float32, from, to Polarity) float32 {
	switch {
	case from == Monopolar && to == Bipolar:
		return v*2 - 1
	case from == Bipolar && to == Monopolar:
		return v*0.5 + 0.5
	default:
		return v
	}
}

// Param is a block-rate modulatable parameter. Modulation is collected with
// Send and SendKeyTrack during a block and resolved by exactly one Take.
type Param struct {
	base  float32
	rng   ParamRange
	mod   []float32
	kt    []float32
	value []float32

	modLen int
	ktLen  int
}

// NewParam creates a parameter with the given base value and range.
func NewParam(base float32, r ParamRange) Param {
	return Param{base: base, rng: r}
}

// Rebase changes the nominal value. It is not block scoped.
func (p *Param) Rebase(v float32) {
	p.base = v
}

func (p *Param) Base() float32 {
	return p.base
}

func (p *Param) Range() ParamRange {
	return p.rng
}

// Send adds src's buffer, converted to polarity and scaled by magnitude, to
// the normalized offset for this block.
func (p *Param) Send(src Source, polarity Polarity, magnitude float32) {
	if src == nil || magnitude == 0 {
		return
	}
	buf, from := src.SourceBuffer()
	p.sendBuffer(buf, from, polarity, magnitude)
}

func (p *Param) sendBuffer(buf []float32, from, to Polarity, magnitude float32) {
	n := len(buf)
	if n == 0 {
		return
	}
	if n > p.modLen {
		p.mod = growBuffer(p.mod, n)
		clearBuffer(p.mod[p.modLen:n])
		p.modLen = n
	}
	for i, v := range buf {
		p.mod[i] += convertPolarity(v, from, to) * magnitude
	}
}

// SendKeyTrack adds freq's per-sample value scaled by magnitude as a raw
// offset, combined before normalization.
func (p *Param) SendKeyTrack(freq *FrequencyInput, magnitude float32) {
	if freq == nil {
		return
	}
	buf := freq.Values()
	n := len(buf)
	if n == 0 {
		return
	}
	if n > p.ktLen {
		p.kt = growBuffer(p.kt, n)
		clearBuffer(p.kt[p.ktLen:n])
		p.ktLen = n
	}
	for i, v := range buf {
		p.kt[i] += v * magnitude
	}
}

// Take resolves the block: each sample is
// denormalize(normalize(base+kt[i]) + mod[i]). Without modulation the raw
// base+kt[i] is returned unclamped; with nothing sent every sample equals the
// base. Buffers shorter than n contribute zero past their end. Both scratch
// buffers are cleared. The returned slice is reused by the next Take.
func (p *Param) Take(n int) []float32 {
	if n < 0 {
		n = 0
	}
	p.value = growBuffer(p.value, n)
	out := p.value
	switch {
	case p.modLen == 0:
		for i := range out {
			v := p.base
			if i < p.ktLen {
				v += p.kt[i]
			}
			out[i] = v
		}
	default:
		for i := range out {
			raw := p.base
			if i < p.ktLen {
				raw += p.kt[i]
			}
			y := p.rng.Normalize(raw)
			if i < p.modLen {
				y += p.mod[i]
			}
			out[i] = p.rng.Denormalize(y)
		}
	}
	clearBuffer(p.mod[:p.modLen])
	clearBuffer(p.kt[:p.ktLen])
	p.modLen = 0
	p.ktLen = 0
	return out
}

// Values returns the buffer produced by the last Take.
func (p *Param) Values() []float32 {
	return p.value
}

// FixedParam is the scalar counterpart of Param for values that are read
// once per block, such as envelope stage times.
type FixedParam struct {
	base   float32
	rng    ParamRange
	offset float32
}

func NewFixedParam(base float32, r ParamRange) FixedParam {
	return FixedParam{base: base, rng: r}
}

func (p *FixedParam) Rebase(v float32) {
	p.base = v
}

// Modulate adds a normalized offset until the next Take.
func (p *FixedParam) Modulate(offset float32) {
	p.offset += offset
}

// Take returns the resolved value and clears the pending offset.
func (p *FixedParam) Take() float32 {
	if p.offset == 0 {
		return p.rng.Clamp(p.base)
	}
	v := p.rng.Denormalize(p.rng.Normalize(p.base) + p.offset)
	p.offset = 0
	return v
}
