package synth

// NoteID identifies the note a voice is playing. It is fixed from trigger
// until the voice is reclaimed.
type NoteID struct {
	Note    uint8
	VoiceID int32
	Channel uint8
}

// NoteState is a voice's sample-accurate lifecycle. It is advanced once per
// sample with Tick and carries no notion of amplitude; envelopes derive
// their shape from it.
type NoteState struct {
	enabled   bool
	held      bool
	ended     bool
	triggerIn int

	releasing bool
	releaseIn int
	choking   bool
	chokeIn   int

	sinceTrigger int
	sinceRelease int
}

// NoteStateSnapshot is the state as seen by envelopes, in seconds.
// SinceTrigger < 0 before the trigger offset, SinceRelease < 0 while held.
type NoteStateSnapshot struct {
	Triggered    bool
	SinceTrigger float32
	SinceRelease float32
}

// Trigger starts the note triggerIn samples from now.
func (s *NoteState) Trigger(triggerIn int) {
	if triggerIn < 0 {
		triggerIn = 0
	}
	*s = NoteState{
		enabled:   true,
		held:      true,
		triggerIn: triggerIn,
	}
}

// MarkReleasedIn releases the note n samples from now. n == 0 releases
// immediately.
func (s *NoteState) MarkReleasedIn(n int) {
	if !s.held || s.releasing {
		return
	}
	s.releasing = true
	s.releaseIn = max(n, 0)
	if s.releaseIn == 0 {
		s.held = false
	}
}

// MarkChokeIn ends the note n samples from now regardless of release.
func (s *NoteState) MarkChokeIn(n int) {
	if s.ended {
		return
	}
	n = max(n, 0)
	if s.choking && s.chokeIn <= n {
		return
	}
	s.choking = true
	s.chokeIn = n
	if n == 0 {
		s.ended = true
	}
}

// MarkEnded ends the note now.
func (s *NoteState) MarkEnded() {
	s.ended = true
}

// Disable returns the slot to the free pool.
func (s *NoteState) Disable() {
	*s = NoteState{}
}

// Tick advances one sample.
func (s *NoteState) Tick() {
	if !s.enabled || s.ended {
		return
	}
	wasHeld := s.held
	if s.releasing && s.held {
		s.releaseIn--
		if s.releaseIn <= 0 {
			s.held = false
		}
	}
	if s.choking {
		s.chokeIn--
		if s.chokeIn <= 0 {
			s.ended = true
		}
	}
	if s.triggerIn > 0 {
		s.triggerIn--
		return
	}
	s.sinceTrigger++
	if !wasHeld {
		s.sinceRelease++
	}
}

// Enabled reports whether the slot holds a note (playing or ended but not
// yet reclaimed).
func (s *NoteState) Enabled() bool {
	return s.enabled
}

func (s *NoteState) Held() bool {
	return s.held
}

func (s *NoteState) Ended() bool {
	return s.ended
}

func (s *NoteState) HasTriggered() bool {
	return s.enabled && s.triggerIn == 0
}

func (s *NoteState) TriggerIn() int {
	return s.triggerIn
}

func (s *NoteState) SamplesSinceTrigger() int {
	return s.sinceTrigger
}

func (s *NoteState) SamplesSinceRelease() int {
	return s.sinceRelease
}

// SamplesSinceChanged is the age of the current phase: time since trigger
// while held, time since release afterwards.
func (s *NoteState) SamplesSinceChanged() int {
	if s.held {
		return s.sinceTrigger
	}
	return s.sinceRelease
}

func (s *NoteState) SecondsSinceTriggered(sampleRate float32) float32 {
	return float32(s.sinceTrigger) / sampleRate
}

func (s *NoteState) SecondsSinceReleased(sampleRate float32) float32 {
	return float32(s.sinceRelease) / sampleRate
}

// Current returns the envelope view of the state.
func (s *NoteState) Current(sampleRate float32) NoteStateSnapshot {
	snap := NoteStateSnapshot{SinceTrigger: -1, SinceRelease: -1}
	if !s.HasTriggered() || sampleRate <= 0 {
		return snap
	}
	snap.Triggered = true
	snap.SinceTrigger = s.SecondsSinceTriggered(sampleRate)
	if !s.held {
		snap.SinceRelease = s.SecondsSinceReleased(sampleRate)
	}
	return snap
}
