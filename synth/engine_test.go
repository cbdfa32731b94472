package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-wavesynth/wavetable"
)

func newTestSynth(t *testing.T, mutate func(p *Params)) *Synth {
	t.Helper()
	p := NewDefaultParams()
	p.Routes = nil
	p.OutputGain = 1
	if mutate != nil {
		mutate(p)
	}
	s, err := NewSynth(48000, p, nil)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func TestNewSynthRejectsInvalidParams(t *testing.T) {
	p := NewDefaultParams()
	p.Polyphony = 0
	if _, err := NewSynth(48000, p, nil); err == nil {
		t.Fatalf("expected error for invalid params")
	}
	if _, err := NewSynth(0, nil, nil); err == nil {
		t.Fatalf("expected error for zero sample rate")
	}
}

func TestNoteOnProducesSoundAtOffset(t *testing.T) {
	s := newTestSynth(t, nil)
	out := s.Process([]Event{NoteOn(100, 0, 69, 1)}, 256)
	if len(out) != 512 {
		t.Fatalf("len = %d, want 512", len(out))
	}
	for i := 0; i < 100; i++ {
		if out[i*2] != 0 || out[i*2+1] != 0 {
			t.Fatalf("sound before note offset at %d", i)
		}
	}
	var energy float64
	for i := 100; i < 256; i++ {
		energy += math.Abs(float64(out[i*2]))
	}
	if energy == 0 {
		t.Fatalf("no sound after note on")
	}
	if s.ActiveVoices() != 1 {
		t.Fatalf("ActiveVoices = %d, want 1", s.ActiveVoices())
	}
}

func TestNoteOffReleasesAndReclaims(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 512)
	s.Process([]Event{NoteOff(0, 0, 60)}, 512)
	if s.ActiveVoices() != 1 {
		t.Fatalf("voice should still ring during release")
	}
	// default release is 0.25 s
	for i := 0; i < 30; i++ {
		s.Process(nil, 512)
	}
	if s.ActiveVoices() != 0 {
		t.Fatalf("ActiveVoices = %d after release, want 0", s.ActiveVoices())
	}
	out := s.Process(nil, 64)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sound after voice ended at %d: %v", i, v)
		}
	}
}

func TestChokeEndsWithoutTail(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 512)
	out := s.Process([]Event{Choke(10, 0, 60)}, 512)
	for i := 10; i < 512; i++ {
		if out[i*2] != 0 {
			t.Fatalf("sound after choke at %d", i)
		}
	}
	if s.ActiveVoices() != 0 {
		t.Fatalf("choked voice still active")
	}
}

func TestSameNoteRetriggerReleasesPrevious(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 128)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 128)
	held := 0
	for _, v := range s.pool.Voices() {
		if v.Active() && v.state.Held() {
			held++
		}
	}
	if held != 1 {
		t.Fatalf("held voices = %d, want 1", held)
	}
	if s.ActiveVoices() != 2 {
		t.Fatalf("ActiveVoices = %d, want 2 (old one releasing)", s.ActiveVoices())
	}
}

func TestPolyphonyLimitSteals(t *testing.T) {
	s := newTestSynth(t, func(p *Params) { p.Polyphony = 4 })
	var events []Event
	for n := uint8(0); n < 10; n++ {
		events = append(events, NoteOn(int(n), 0, 50+n, 1))
	}
	s.Process(events, 64)
	if s.ActiveVoices() != 4 {
		t.Fatalf("ActiveVoices = %d, want 4", s.ActiveVoices())
	}
	notes := map[uint8]bool{}
	for _, v := range s.pool.Voices() {
		notes[v.ID().Note] = true
	}
	for n := uint8(56); n < 60; n++ {
		if !notes[n] {
			t.Fatalf("newest notes should survive, missing %d in %v", n, notes)
		}
	}
}

func TestInvalidEventsAreIgnored(t *testing.T) {
	s := newTestSynth(t, nil)
	out := s.Process([]Event{
		NoteOn(0, 0, 200, 1),
		NoteOn(0, 16, 60, 1),
		NoteOn(64, 0, 60, 1),
		{Kind: EventKind(99)},
	}, 64)
	if s.ActiveVoices() != 0 {
		t.Fatalf("invalid events triggered %d voices", s.ActiveVoices())
	}
	for _, v := range out {
		if v != 0 {
			t.Fatalf("invalid events produced sound")
		}
	}
}

func TestEventsAreAppliedInOffsetOrder(t *testing.T) {
	s := newTestSynth(t, nil)
	// note off listed first but later in time must not be lost
	s.Process([]Event{NoteOff(50, 0, 60), NoteOn(10, 0, 60, 1)}, 128)
	v := s.pool.Voices()[0]
	if v.state.Held() {
		t.Fatalf("note off at a later offset was not applied")
	}
}

func TestPitchBendShiftsFrequency(t *testing.T) {
	const sr = 48000
	s := newTestSynth(t, func(p *Params) {
		p.Envelopes[0] = ADSRParams{Attack: 0.001, Decay: 0.001, Sustain: 1, Release: 0.1}
	})
	// +12 semitones is 0.5 + 12/96
	bend := PitchBend(0, 0, 0.5+12.0/96)
	base := renderLeft(s, []Event{NoteOn(0, 0, 57, 1)}, sr/256, 256)
	s.Reset()
	bent := renderLeft(s, []Event{bend, NoteOn(0, 0, 57, 1)}, sr/256, 256)

	f0 := measureFundamentalFreq(base, sr)
	f1 := measureFundamentalFreq(bent, sr)
	if !approxEqual(f0, 220, 2) {
		t.Fatalf("unbent = %v Hz, want 220", f0)
	}
	if !approxEqual(f1, 440, 3) {
		t.Fatalf("bent = %v Hz, want 440", f1)
	}
}

func TestPitchBendReachesSoundingVoice(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 3, 60, 1)}, 64)
	s.Process([]Event{PitchBend(0, 3, 1)}, 64)
	v := s.pool.Voices()[0]
	if got := v.freq.Bend.Current(); got != 48 {
		t.Fatalf("bend = %v semitones, want 48", got)
	}
	// other channels are unaffected
	s.Process([]Event{PitchBend(0, 4, 0)}, 64)
	if got := v.freq.Bend.Current(); got != 48 {
		t.Fatalf("bend on another channel leaked: %v", got)
	}
}

func TestChannelPressureIsRemembered(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{ChannelPressure(0, 2, 0.75)}, 64)
	s.Process([]Event{NoteOn(0, 2, 60, 1)}, 64)
	v := s.pool.Voices()[0]
	if got := v.aftertouch.Current(); got != 0.75 {
		t.Fatalf("new voice pressure = %v, want 0.75", got)
	}
}

func TestAftertouchRouteModulatesLevel(t *testing.T) {
	s := newTestSynth(t, func(p *Params) {
		p.Oscillators[0].Level = 0
		p.Routes = []ModRoute{{Source: SourceAftertouch, Target: TargetOsc1Level, Amount: 1}}
		p.AftertouchSmoothing = Smoothing{}
	})
	quiet := renderLeft(s, []Event{NoteOn(0, 0, 60, 1)}, 8, 256)
	if rms(quiet) != 0 {
		t.Fatalf("zero level with no pressure should be silent")
	}
	loud := renderLeft(s, []Event{ChannelPressure(0, 0, 1)}, 8, 256)
	if rms(loud) < 0.1 {
		t.Fatalf("pressure should open the level, rms = %v", rms(loud))
	}
}

func TestWavetableSwapTakesEffect(t *testing.T) {
	h := wavetable.NewHandle(nil)
	p := NewDefaultParams()
	p.Routes = nil
	s, err := NewSynth(48000, p, h)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 256)

	silent := make([]float32, wavetable.SliceResolution)
	if err := h.Rebuild(silent, wavetable.SliceResolution); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	out := s.Process(nil, 256)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("expected silence from an all-zero table at %d, got %v", i, v)
		}
	}
}

func TestSetParamsRebasesLiveVoices(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 64)
	p := s.Params()
	p.Oscillators[0].Level = 0
	if err := s.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	out := s.Process(nil, 64)
	for _, v := range out {
		if v != 0 {
			t.Fatalf("level change did not reach the sounding voice")
		}
	}
	bad := s.Params()
	bad.OutputGain = -1
	if err := s.SetParams(bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPeakMeterDecays(t *testing.T) {
	s := newTestSynth(t, nil)
	s.Process([]Event{NoteOn(0, 0, 60, 1)}, 2048)
	p := s.Peak()
	if p <= 0 {
		t.Fatalf("peak = %v after note", p)
	}
	s.Process([]Event{Choke(0, 0, 60)}, 64)
	s.Process(nil, 64)
	if got := s.Peak(); got >= p || got <= 0 {
		t.Fatalf("peak should decay: %v -> %v", p, got)
	}
	s.Reset()
	if s.Peak() != 0 || s.ActiveVoices() != 0 {
		t.Fatalf("Reset left state behind")
	}
}

func TestProcessPlanarMatchesInterleaved(t *testing.T) {
	a := newTestSynth(t, nil)
	b := newTestSynth(t, nil)
	ev := []Event{NoteOn(3, 0, 64, 0.8)}
	inter := a.Process(ev, 128)
	left := make([]float32, 128)
	right := make([]float32, 128)
	b.ProcessPlanar(ev, left, right)
	for i := 0; i < 128; i++ {
		if inter[i*2] != left[i] || inter[i*2+1] != right[i] {
			t.Fatalf("planar/interleaved mismatch at %d", i)
		}
	}
}

func BenchmarkSynthProcess(b *testing.B) {
	s, err := NewSynth(48000, nil, nil)
	if err != nil {
		b.Fatalf("NewSynth: %v", err)
	}
	var events []Event
	for n := uint8(0); n < 8; n++ {
		events = append(events, NoteOn(0, 0, 48+n*3, 0.8))
	}
	s.Process(events, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Process(nil, 256)
	}
}
