package synth

// EventKind identifies a host event.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventChoke
	EventChannelPressure
	EventPitchBend
)

// Event is a timed host event. Offset is the sample index within the block.
// Velocity and Value are normalized to [0,1]. VoiceID -1 means "match by
// channel and note".
type Event struct {
	Kind     EventKind
	Offset   int
	Note     uint8
	Channel  uint8
	Velocity float32
	VoiceID  int32
	Value    float32
}

func NoteOn(offset int, channel, note uint8, velocity float32) Event {
	return Event{Kind: EventNoteOn, Offset: offset, Channel: channel, Note: note, Velocity: velocity, VoiceID: -1}
}

func NoteOff(offset int, channel, note uint8) Event {
	return Event{Kind: EventNoteOff, Offset: offset, Channel: channel, Note: note, VoiceID: -1}
}

func Choke(offset int, channel, note uint8) Event {
	return Event{Kind: EventChoke, Offset: offset, Channel: channel, Note: note, VoiceID: -1}
}

func ChannelPressure(offset int, channel uint8, pressure float32) Event {
	return Event{Kind: EventChannelPressure, Offset: offset, Channel: channel, Value: pressure, VoiceID: -1}
}

// PitchBend takes a normalized bend where 0.5 is centred.
func PitchBend(offset int, channel uint8, value float32) Event {
	return Event{Kind: EventPitchBend, Offset: offset, Channel: channel, Value: value, VoiceID: -1}
}

func (e Event) valid(numFrames int) bool {
	if e.Note > 127 || e.Channel > 15 {
		return false
	}
	if e.Offset >= numFrames {
		return false
	}
	switch e.Kind {
	case EventNoteOn, EventNoteOff, EventChoke, EventChannelPressure, EventPitchBend:
		return true
	}
	return false
}

func (e Event) matches(id NoteID) bool {
	if e.VoiceID >= 0 && id.VoiceID >= 0 {
		return e.VoiceID == id.VoiceID
	}
	return e.Channel == id.Channel && e.Note == id.Note
}
