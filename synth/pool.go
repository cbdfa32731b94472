package synth

import "cmp"

// SlotKind ranks a voice slot for allocation. Lower kinds are taken first.
type SlotKind int

const (
	SlotDisabled SlotKind = iota
	SlotReleased
	SlotHeld
)

// SlotStatus is a slot's kind and the samples spent in that kind.
type SlotStatus struct {
	Kind SlotKind
	Age  int
}

// CompareSlots orders slots by steal preference: free before released
// before held, then older before younger. It is usable with
// slices.SortStableFunc.
func CompareSlots(a, b SlotStatus) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(b.Age, a.Age)
}

// SelectSlot returns the index of the slot to use for a new note, or -1 for
// an empty list. Ties go to the lowest index.
func SelectSlot(slots []SlotStatus) int {
	best := -1
	for i, s := range slots {
		if best < 0 || CompareSlots(s, slots[best]) < 0 {
			best = i
		}
	}
	return best
}

// Pool is a fixed set of preallocated voices.
type Pool struct {
	voices [MaxPolyphony]*Voice
	size   int
	status [MaxPolyphony]SlotStatus
}

func newPool(sampleRate float32, p *Params) Pool {
	pool := Pool{size: p.Polyphony}
	for i := range pool.voices {
		pool.voices[i] = newVoice(sampleRate, p, p.Seed+int64(i)*7919)
	}
	return pool
}

// Voices returns the usable slots.
func (p *Pool) Voices() []*Voice {
	return p.voices[:p.size]
}

func (p *Pool) resize(n int) {
	n = min(max(n, 1), MaxPolyphony)
	for _, v := range p.voices[n:] {
		v.state.Disable()
	}
	p.size = n
}

// Allocate picks the slot for a new note. It never fails: when every slot
// is busy the least valuable voice is stolen.
func (p *Pool) Allocate() *Voice {
	status := p.status[:p.size]
	for i, v := range p.Voices() {
		status[i] = v.Status()
	}
	return p.voices[SelectSlot(status)]
}

// Active counts voices that are still sounding.
func (p *Pool) Active() int {
	n := 0
	for _, v := range p.Voices() {
		if v.Active() {
			n++
		}
	}
	return n
}

// reclaim frees slots whose note has ended.
func (p *Pool) reclaim() {
	for _, v := range p.Voices() {
		if v.state.Enabled() && v.state.Ended() {
			v.state.Disable()
			v.id = NoteID{VoiceID: -1}
		}
	}
}
