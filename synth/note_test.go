package synth

import "testing"

func TestTriggerDelaysCounters(t *testing.T) {
	var s NoteState
	s.Trigger(5)
	for i := 0; i < 5; i++ {
		if s.HasTriggered() {
			t.Fatalf("triggered after %d ticks, want after 5", i)
		}
		s.Tick()
	}
	if s.SamplesSinceTrigger() != 0 {
		t.Fatalf("samplesSinceTrigger = %d after 5 ticks, want 0", s.SamplesSinceTrigger())
	}
	s.Tick()
	if s.SamplesSinceTrigger() != 1 {
		t.Fatalf("samplesSinceTrigger = %d after 6 ticks, want 1", s.SamplesSinceTrigger())
	}
}

func TestMarkReleasedInFlipsExactly(t *testing.T) {
	var s NoteState
	s.Trigger(0)
	s.MarkReleasedIn(3)
	s.Tick()
	s.Tick()
	if !s.Held() {
		t.Fatalf("released after 2 ticks, want still held")
	}
	s.Tick()
	if s.Held() {
		t.Fatalf("still held after 3 ticks")
	}
	if s.SamplesSinceRelease() != 0 {
		t.Fatalf("samplesSinceRelease = %d on the release tick, want 0", s.SamplesSinceRelease())
	}
	s.Tick()
	if s.SamplesSinceRelease() != 1 {
		t.Fatalf("samplesSinceRelease = %d, want 1", s.SamplesSinceRelease())
	}
	if s.SamplesSinceChanged() != 1 {
		t.Fatalf("samplesSinceChanged = %d, want 1", s.SamplesSinceChanged())
	}
}

func TestMarkReleasedInZeroIsImmediate(t *testing.T) {
	var s NoteState
	s.Trigger(0)
	s.MarkReleasedIn(0)
	if s.Held() {
		t.Fatalf("release at offset 0 should take effect immediately")
	}
}

func TestChokeEndsRegardlessOfRelease(t *testing.T) {
	var s NoteState
	s.Trigger(0)
	s.MarkChokeIn(2)
	s.Tick()
	if s.Ended() {
		t.Fatalf("ended after 1 tick, want 2")
	}
	s.Tick()
	if !s.Ended() {
		t.Fatalf("not ended after 2 ticks")
	}
	if !s.Held() {
		t.Fatalf("choke must not release")
	}
	// ended is terminal
	before := s.SamplesSinceTrigger()
	s.Tick()
	if s.SamplesSinceTrigger() != before {
		t.Fatalf("ended state kept counting")
	}
}

func TestCurrentSnapshot(t *testing.T) {
	const sr = 1000
	var s NoteState
	s.Trigger(2)
	snap := s.Current(sr)
	if snap.Triggered || snap.SinceTrigger >= 0 || snap.SinceRelease >= 0 {
		t.Fatalf("pre-trigger snapshot = %+v", snap)
	}
	for i := 0; i < 2+100; i++ {
		s.Tick()
	}
	snap = s.Current(sr)
	if !snap.Triggered || !approxEqual(snap.SinceTrigger, 0.1, 1e-6) || snap.SinceRelease >= 0 {
		t.Fatalf("held snapshot = %+v", snap)
	}
	s.MarkReleasedIn(0)
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	snap = s.Current(sr)
	if !approxEqual(snap.SinceRelease, 0.05, 1e-6) || !approxEqual(snap.SinceTrigger, 0.15, 1e-6) {
		t.Fatalf("released snapshot = %+v", snap)
	}
}

func TestDisableClearsState(t *testing.T) {
	var s NoteState
	s.Trigger(0)
	s.Tick()
	s.Disable()
	if s.Enabled() || s.Held() || s.SamplesSinceTrigger() != 0 {
		t.Fatalf("Disable left state behind: %+v", s)
	}
}
