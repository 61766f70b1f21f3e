package event

// Kind identifies the payload of an Event.
type Kind uint8

const (
	// KindNoteOn starts a note. Note is valid.
	KindNoteOn Kind = iota + 1
	// KindNoteOff releases a note. Note is valid; a note-on with velocity
	// zero decodes as KindNoteOff.
	KindNoteOff
	// KindControl is a MIDI control change. Control is valid.
	KindControl
	// KindMIDIOther is any other MIDI message. MIDI holds its raw bytes.
	KindMIDIOther
	// KindProperty is a transport property from an atom:Object.
	KindProperty
)

var kindNames = [...]string{"invalid", "note-on", "note-off", "control", "midi", "property"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Note is a MIDI note message.
type Note struct {
	Channel  uint8
	Pitch    uint8
	Velocity uint8
}

// Control is a MIDI control change message.
type Control struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// Controller numbers with channel-mode meaning.
const (
	ControllerAllSoundOff = 120
	ControllerAllNotesOff = 123
)

// Raw holds up to three bytes of a MIDI message. Len is the length of the
// original message, which may exceed three for system exclusive data.
type Raw struct {
	Status uint8
	Data1  uint8
	Data2  uint8
	Len    int
}

// PropertyKey identifies a transport property.
type PropertyKey uint8

const (
	// PropertyFrame is the host transport position in frames (Long).
	PropertyFrame PropertyKey = iota + 1
	// PropertySpeed is the transport speed, 0 stopped and 1 rolling (Float).
	PropertySpeed
	// PropertyBPM is the tempo in beats per minute (Float).
	PropertyBPM
)

// Property is one decoded object property. Integer values are carried in
// Long and floating point values in Float; numeric atoms of the other
// class are converted.
type Property struct {
	Key   PropertyKey
	Long  int64
	Float float32
}

// Event is one decoded record. Frames is the offset within the current
// block. Only the field selected by Kind is meaningful.
type Event struct {
	Frames   int64
	Kind     Kind
	Note     Note
	Control  Control
	MIDI     Raw
	Property Property
}
