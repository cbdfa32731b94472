package render

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-wavesynth/internal/audioio"
	"github.com/cwbudde/algo-wavesynth/synth"
)

func newTestSynth(t *testing.T) *synth.Synth {
	t.Helper()
	s, err := synth.NewSynth(48000, synth.NewDefaultParams(), nil)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func TestNotesFixedDuration(t *testing.T) {
	s := newTestSynth(t)
	o := DefaultOptions()
	o.Duration = 0.5
	o.ReleaseAfter = 0.2
	out, err := Notes(s, o)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(out) != 24000*2 {
		t.Fatalf("expected 24000 stereo frames, got %d samples", len(out))
	}
	if audioio.StereoRMS(out[:9600*2]) < 1e-3 {
		t.Fatalf("expected audible output while held")
	}
}

func TestNotesAutoStopAfterRelease(t *testing.T) {
	s := newTestSynth(t)
	o := DefaultOptions()
	o.ReleaseAfter = 0.1
	o.DecayDBFS = -80
	o.MinDuration = 0.2
	o.MaxDuration = 10
	out, err := Notes(s, o)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	frames := len(out) / 2
	if frames >= 10*48000 {
		t.Fatalf("auto-stop did not trigger, rendered %d frames", frames)
	}
	if frames < int(0.2*48000) {
		t.Fatalf("rendered fewer frames than min duration: %d", frames)
	}
	if s.ActiveVoices() != 0 {
		t.Fatalf("expected all voices reclaimed after release tail, got %d", s.ActiveVoices())
	}
}

func TestNotesStrumDelaysOnsets(t *testing.T) {
	s := newTestSynth(t)
	o := DefaultOptions()
	o.Notes = []uint8{60, 64, 67}
	o.Strum = 0.1
	o.Duration = 0.15
	if _, err := Notes(s, o); err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if got := s.ActiveVoices(); got != 2 {
		t.Fatalf("expected 2 voices started within 0.15s at 0.1s strum, got %d", got)
	}
}

func TestNotesRejectsEmpty(t *testing.T) {
	s := newTestSynth(t)
	o := DefaultOptions()
	o.Notes = nil
	if _, err := Notes(s, o); err == nil {
		t.Fatalf("expected error for empty note list")
	}
}

func TestNotesResetsBetweenRenders(t *testing.T) {
	s := newTestSynth(t)
	o := DefaultOptions()
	o.Duration = 0.2
	a, err := Notes(s, o)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	a = append([]float32(nil), a...)
	b, err := Notes(s, o)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	// Voice seeds advance across triggers, so compare energy rather than samples.
	ra, rb := audioio.StereoRMS(a), audioio.StereoRMS(b)
	if math.Abs(ra-rb) > 0.05*ra {
		t.Fatalf("render energy differs after reset: %f vs %f", ra, rb)
	}
}
