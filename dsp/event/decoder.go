package event

import (
	"errors"
	"math"

	"gitlab.com/gomidi/midi/v2"
)

var (
	// ErrTruncated reports a header or payload that extends past the end
	// of the sequence.
	ErrTruncated = errors.New("event: truncated record")
	// ErrNotSequence reports a buffer whose atom type is not atom:Sequence.
	ErrNotSequence = errors.New("event: not an atom sequence")
	// ErrTimeUnit reports a sequence stamped in a unit other than frames.
	ErrTimeUnit = errors.New("event: unsupported time unit")
	// ErrMalformedMIDI reports a MIDI payload with the wrong length for
	// its status byte.
	ErrMalformedMIDI = errors.New("event: malformed midi message")
	// ErrMalformedObject reports an object property that does not fit in
	// its record or a value of the wrong size.
	ErrMalformedObject = errors.New("event: malformed object")
)

const (
	seqHeaderSize    = 16
	recordHeaderSize = 16
	atomHeaderSize   = 8
)

// Result summarizes one Decode call.
type Result struct {
	Records int   // records framed, including skipped ones
	Errors  int   // malformed records and framing errors
	Skipped int   // well-formed records of types the decoder ignores
	Err     error // first error encountered, nil if Errors == 0
}

func (r *Result) fail(err error) {
	r.Errors++
	if r.Err == nil {
		r.Err = err
	}
}

// Decoder turns atom sequences into Events. It holds no per-call state
// and may be shared by engines using the same URID table.
type Decoder struct {
	urids URIDs
}

// NewDecoder returns a decoder for the given URID table.
func NewDecoder(u URIDs) *Decoder {
	return &Decoder{urids: u}
}

// URIDs returns the decoder's URID table.
func (d *Decoder) URIDs() URIDs {
	return d.urids
}

// Decode parses buf and appends the decoded events to dst[:0], ordered by
// Frames. It does not allocate while dst has capacity for every event.
// An empty buf is an empty sequence.
func (d *Decoder) Decode(buf []byte, dst []Event) ([]Event, Result) {
	dst = dst[:0]

	var res Result

	if len(buf) == 0 {
		return dst, res
	}

	hdr := reader{buf: buf}
	size, _ := hdr.u32()
	typ, _ := hdr.u32()
	unit, _ := hdr.u32()

	if _, ok := hdr.u32(); !ok {
		res.fail(ErrTruncated)
		return dst, res
	}

	if typ != d.urids.Sequence {
		res.fail(ErrNotSequence)
		return dst, res
	}

	if unit != 0 && unit != d.urids.FrameTime {
		res.fail(ErrTimeUnit)
		return dst, res
	}

	end := len(buf)
	if declared := uint64(size) + atomHeaderSize; declared < uint64(end) {
		end = int(declared)
	}

	r := reader{buf: buf[:end], pos: seqHeaderSize}
	for r.remaining() > 0 {
		frames, ok := r.i64()
		if !ok {
			res.fail(ErrTruncated)
			break
		}

		psize, ok := r.u32()
		if !ok {
			res.fail(ErrTruncated)
			break
		}

		ptype, ok := r.u32()
		if !ok {
			res.fail(ErrTruncated)
			break
		}

		payload, ok := r.bytes(int(psize))
		if !ok || psize > math.MaxInt32 {
			res.fail(ErrTruncated)
			break
		}

		r.align()
		res.Records++

		switch ptype {
		case d.urids.MIDIEvent:
			ev, err := decodeMIDI(frames, payload)
			if err != nil {
				res.fail(err)
				continue
			}

			dst = append(dst, ev)
		case d.urids.Object, d.urids.Blank:
			var err error

			dst, err = d.decodeObject(frames, payload, dst)
			if err != nil {
				res.fail(err)
			}
		default:
			res.Skipped++
		}
	}

	sortByFrames(dst)

	return dst, res
}

func decodeMIDI(frames int64, p []byte) (Event, error) {
	ev := Event{Frames: frames}
	if len(p) == 0 {
		return ev, ErrMalformedMIDI
	}

	status := p[0]
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		if len(p) != 3 {
			return ev, ErrMalformedMIDI
		}
	case 0xC0, 0xD0:
		if len(p) != 2 {
			return ev, ErrMalformedMIDI
		}
	default:
		if status < 0x80 {
			// Running status is not allowed in atom sequences.
			return ev, ErrMalformedMIDI
		}
	}

	msg := midi.Message(p)

	var ch, key, vel uint8

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		ev.Kind = KindNoteOn
		ev.Note = Note{Channel: ch, Pitch: key, Velocity: vel}
	case msg.GetNoteEnd(&ch, &key):
		ev.Kind = KindNoteOff
		ev.Note = Note{Channel: ch, Pitch: key, Velocity: p[2]}
	case msg.GetControlChange(&ch, &key, &vel):
		ev.Kind = KindControl
		ev.Control = Control{Channel: ch, Controller: key, Value: vel}
	default:
		ev.Kind = KindMIDIOther
		ev.MIDI = Raw{Status: status, Len: len(p)}
		if len(p) > 1 {
			ev.MIDI.Data1 = p[1]
		}

		if len(p) > 2 {
			ev.MIDI.Data2 = p[2]
		}
	}

	return ev, nil
}

// decodeObject appends one event per recognized property. Properties
// before a malformed one are kept.
func (d *Decoder) decodeObject(frames int64, p []byte, dst []Event) ([]Event, error) {
	r := reader{buf: p}
	if _, ok := r.u32(); !ok { // id
		return dst, ErrMalformedObject
	}

	if _, ok := r.u32(); !ok { // otype
		return dst, ErrMalformedObject
	}

	for r.remaining() > 0 {
		key, ok1 := r.u32()
		_, ok2 := r.u32() // context
		vsize, ok3 := r.u32()
		vtype, ok4 := r.u32()

		if !ok1 || !ok2 || !ok3 || !ok4 {
			return dst, ErrMalformedObject
		}

		body, ok := r.bytes(int(vsize))
		if !ok || vsize > math.MaxInt32 {
			return dst, ErrMalformedObject
		}

		r.align()

		var pk PropertyKey

		switch key {
		case d.urids.TimeFrame:
			pk = PropertyFrame
		case d.urids.TimeSpeed:
			pk = PropertySpeed
		case d.urids.TimeBPM:
			pk = PropertyBPM
		default:
			continue
		}

		prop, known, err := d.numeric(vtype, body)
		if err != nil {
			return dst, err
		}

		if !known {
			continue
		}

		prop.Key = pk
		dst = append(dst, Event{Frames: frames, Kind: KindProperty, Property: prop})
	}

	return dst, nil
}

// numeric decodes a numeric atom body into both representations.
func (d *Decoder) numeric(vtype uint32, body []byte) (Property, bool, error) {
	r := reader{buf: body}

	var p Property

	switch vtype {
	case d.urids.Long:
		v, ok := r.i64()
		if !ok {
			return p, true, ErrMalformedObject
		}

		p.Long, p.Float = v, float32(v)
	case d.urids.Int:
		v, ok := r.u32()
		if !ok {
			return p, true, ErrMalformedObject
		}

		p.Long, p.Float = int64(int32(v)), float32(int32(v))
	case d.urids.Float:
		v, ok := r.u32()
		if !ok {
			return p, true, ErrMalformedObject
		}

		p.Float = math.Float32frombits(v)
		p.Long = int64(p.Float)
	case d.urids.Double:
		v, ok := r.i64()
		if !ok {
			return p, true, ErrMalformedObject
		}

		f := math.Float64frombits(uint64(v))
		p.Float, p.Long = float32(f), int64(f)
	default:
		return p, false, nil
	}

	return p, true, nil
}

// sortByFrames is a stable insertion sort. Hosts deliver events in order,
// so this is a single pass in the common case.
func sortByFrames(evs []Event) {
	for i := 1; i < len(evs); i++ {
		for j := i; j > 0 && evs[j].Frames < evs[j-1].Frames; j-- {
			evs[j], evs[j-1] = evs[j-1], evs[j]
		}
	}
}
