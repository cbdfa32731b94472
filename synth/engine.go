package synth

import (
	"fmt"
	"slices"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-wavesynth/dsp"
	"github.com/cwbudde/algo-wavesynth/wavetable"
)

const (
	numChannels = 16
	peakDecay   = 0.99
)

// Synth is the polyphonic engine. It is driven from a single audio thread;
// only the wavetable handle may be touched from elsewhere.
type Synth struct {
	sampleRate float32
	params     *Params
	pool       Pool
	table      *wavetable.Handle

	events   []Event
	pressure [numChannels]float32
	bend     [numChannels]float32

	left  []float32
	right []float32
	out   []float32

	dc   [2]*dsp.Biquad
	peak float32
}

// NewSynth creates an engine. A nil params selects the defaults and a nil
// table handle the built-in wavetable.
func NewSynth(sampleRate int, params *Params, table *wavetable.Handle) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0, got %d", sampleRate)
	}
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if table == nil {
		table = wavetable.NewHandle(nil)
	}
	params = params.Clone()
	sr := float32(sampleRate)
	s := &Synth{
		sampleRate: sr,
		params:     params,
		pool:       newPool(sr, params),
		table:      table,
		dc:         [2]*dsp.Biquad{dsp.NewDCBlocker(sr), dsp.NewDCBlocker(sr)},
	}
	return s, nil
}

func (s *Synth) SampleRate() int {
	return int(s.sampleRate)
}

// Params returns a copy of the current parameters.
func (s *Synth) Params() *Params {
	return s.params.Clone()
}

// Wavetable returns the handle voices read from.
func (s *Synth) Wavetable() *wavetable.Handle {
	return s.table
}

// SetParams validates p and rebases every voice, including sounding ones.
func (s *Synth) SetParams(p *Params) error {
	if p == nil {
		return fmt.Errorf("params must not be nil")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	s.params = p.Clone()
	for _, v := range s.pool.voices {
		v.apply(s.params)
	}
	s.pool.resize(s.params.Polyphony)
	return nil
}

// Reset silences every voice and clears channel state.
func (s *Synth) Reset() {
	for _, v := range s.pool.voices {
		v.state.Disable()
		v.id = NoteID{VoiceID: -1}
	}
	s.pressure = [numChannels]float32{}
	s.bend = [numChannels]float32{}
	s.dc[0].Reset()
	s.dc[1].Reset()
	s.peak = 0
}

// ActiveVoices counts voices that are still sounding.
func (s *Synth) ActiveVoices() int {
	return s.pool.Active()
}

// Peak is a decaying absolute output peak.
func (s *Synth) Peak() float32 {
	return s.peak
}

// Process renders numFrames stereo frames (interleaved). The returned slice
// is reused by the next call.
func (s *Synth) Process(events []Event, numFrames int) []float32 {
	if numFrames < 0 {
		numFrames = 0
	}
	s.left = growBuffer(s.left, numFrames)
	s.right = growBuffer(s.right, numFrames)
	s.ProcessPlanar(events, s.left, s.right)
	s.out = growBuffer(s.out, numFrames*2)
	for i := 0; i < numFrames; i++ {
		s.out[i*2] = s.left[i]
		s.out[i*2+1] = s.right[i]
	}
	return s.out
}

// ProcessPlanar renders min(len(left), len(right)) frames into left and
// right, overwriting them. Events are applied at their offsets; events
// outside the block or with out-of-range note/channel are ignored.
func (s *Synth) ProcessPlanar(events []Event, left, right []float32) {
	n := min(len(left), len(right))
	left, right = left[:n], right[:n]
	clearBuffer(left)
	clearBuffer(right)

	table := s.table.Load()
	voices := s.pool.Voices()
	for _, v := range voices {
		v.beginBlock()
	}

	s.events = append(s.events[:0], events...)
	for i := range s.events {
		s.events[i].Offset = max(s.events[i].Offset, 0)
	}
	slices.SortStableFunc(s.events, func(a, b Event) int {
		return a.Offset - b.Offset
	})
	for _, e := range s.events {
		if e.valid(n) {
			s.apply(e)
		}
	}

	for _, v := range voices {
		if !v.state.Enabled() {
			continue
		}
		v.render(table, s.params.Routes, n)
		for i := 0; i < n; i++ {
			left[i] += v.left[i]
			right[i] += v.right[i]
		}
	}
	s.pool.reclaim()

	gain := s.params.OutputGain
	var peak float32
	for i := 0; i < n; i++ {
		l := left[i] * gain
		r := right[i] * gain
		if s.params.DCBlock {
			l = s.dc[0].Process(l)
			r = s.dc[1].Process(r)
		}
		l = float32(dspcore.FlushDenormals(float64(l)))
		r = float32(dspcore.FlushDenormals(float64(r)))
		left[i] = l
		right[i] = r
		peak = max(peak, abs32(l), abs32(r))
	}
	s.peak = max(peak, s.peak*peakDecay)
}

func (s *Synth) apply(e Event) {
	switch e.Kind {
	case EventNoteOn:
		s.noteOn(e)
	case EventNoteOff:
		for _, v := range s.pool.Voices() {
			if v.Active() && v.state.Held() && e.matches(v.id) {
				v.release(e.Offset)
			}
		}
	case EventChoke:
		for _, v := range s.pool.Voices() {
			if v.Active() && e.matches(v.id) {
				v.choke(e.Offset)
			}
		}
	case EventChannelPressure:
		p := clampUnit(e.Value)
		s.pressure[e.Channel] = p
		for _, v := range s.pool.Voices() {
			if v.Active() && v.id.Channel == e.Channel {
				v.setPressure(e.Offset, p)
			}
		}
	case EventPitchBend:
		semis := (clampUnit(e.Value)*2 - 1) * s.params.PitchBendRange
		s.bend[e.Channel] = semis
		for _, v := range s.pool.Voices() {
			if v.Active() && v.id.Channel == e.Channel {
				v.setBend(e.Offset, semis)
			}
		}
	}
}

func (s *Synth) noteOn(e Event) {
	for _, v := range s.pool.Voices() {
		if v.Active() && v.state.Held() && v.id.Channel == e.Channel && v.id.Note == e.Note {
			v.release(e.Offset)
		}
	}
	v := s.pool.Allocate()
	id := NoteID{Note: e.Note, VoiceID: e.VoiceID, Channel: e.Channel}
	v.trigger(id, clampUnit(e.Velocity), e.Offset, s.bend[e.Channel], s.pressure[e.Channel])
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
