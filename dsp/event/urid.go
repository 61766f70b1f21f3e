package event

// Standard URIs used by the decoder.
const (
	URIAtomSequence = "http://lv2plug.in/ns/ext/atom#Sequence"
	URIAtomObject   = "http://lv2plug.in/ns/ext/atom#Object"
	URIAtomBlank    = "http://lv2plug.in/ns/ext/atom#Blank"
	URIAtomLong     = "http://lv2plug.in/ns/ext/atom#Long"
	URIAtomInt      = "http://lv2plug.in/ns/ext/atom#Int"
	URIAtomFloat    = "http://lv2plug.in/ns/ext/atom#Float"
	URIAtomDouble   = "http://lv2plug.in/ns/ext/atom#Double"
	URIAtomFrame    = "http://lv2plug.in/ns/ext/atom#frameTime"
	URIMIDIEvent    = "http://lv2plug.in/ns/ext/midi#MidiEvent"
	URITimePosition = "http://lv2plug.in/ns/ext/time#Position"
	URITimeFrame    = "http://lv2plug.in/ns/ext/time#frame"
	URITimeSpeed    = "http://lv2plug.in/ns/ext/time#speed"
	URITimeBPM      = "http://lv2plug.in/ns/ext/time#beatsPerMinute"
)

// Mapper maps a URI to the host's integer identifier (LV2 urid:map).
type Mapper interface {
	Map(uri string) uint32
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(uri string) uint32

// Map calls f(uri).
func (f MapperFunc) Map(uri string) uint32 { return f(uri) }

// URIDs holds the interned identifiers the decoder compares against.
type URIDs struct {
	Sequence     uint32
	Object       uint32
	Blank        uint32
	Long         uint32
	Int          uint32
	Float        uint32
	Double       uint32
	FrameTime    uint32
	MIDIEvent    uint32
	TimePosition uint32
	TimeFrame    uint32
	TimeSpeed    uint32
	TimeBPM      uint32
}

// NewURIDs maps the standard URIs through m. It is called once at
// instantiation, outside the real-time thread.
func NewURIDs(m Mapper) URIDs {
	return URIDs{
		Sequence:     m.Map(URIAtomSequence),
		Object:       m.Map(URIAtomObject),
		Blank:        m.Map(URIAtomBlank),
		Long:         m.Map(URIAtomLong),
		Int:          m.Map(URIAtomInt),
		Float:        m.Map(URIAtomFloat),
		Double:       m.Map(URIAtomDouble),
		FrameTime:    m.Map(URIAtomFrame),
		MIDIEvent:    m.Map(URIMIDIEvent),
		TimePosition: m.Map(URITimePosition),
		TimeFrame:    m.Map(URITimeFrame),
		TimeSpeed:    m.Map(URITimeSpeed),
		TimeBPM:      m.Map(URITimeBPM),
	}
}

var defaultTable = [...]string{
	URIAtomSequence,
	URIAtomObject,
	URIAtomBlank,
	URIAtomLong,
	URIAtomInt,
	URIAtomFloat,
	URIAtomDouble,
	URIAtomFrame,
	URIMIDIEvent,
	URITimePosition,
	URITimeFrame,
	URITimeSpeed,
	URITimeBPM,
}

// DefaultURIDs returns a fixed identifier table (1, 2, 3, ... in the order
// of the URI constants) for tools and tests that have no host.
func DefaultURIDs() URIDs {
	return NewURIDs(MapperFunc(func(uri string) uint32 {
		for i, u := range defaultTable {
			if u == uri {
				return uint32(i + 1)
			}
		}

		return 0
	}))
}
