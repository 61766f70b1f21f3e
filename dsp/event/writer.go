package event

import (
	"encoding/binary"
	"math"
)

// Writer builds atom sequences in the wire format read by Decoder.
// Events must be added in increasing frame order for the result to be a
// valid LV2 sequence; Decoder tolerates either.
type Writer struct {
	urids URIDs
	buf   []byte
}

// NewWriter returns a writer holding an empty sequence.
func NewWriter(u URIDs) *Writer {
	w := &Writer{urids: u, buf: make([]byte, 0, 256)}
	w.Reset()

	return w
}

// Reset discards all records and keeps the buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.buf = binary.LittleEndian.AppendUint32(w.buf, 8) // atom.size, patched by Bytes
	w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.Sequence)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.FrameTime)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, 0)
}

// Record appends a record with an arbitrary type and payload.
func (w *Writer) Record(frames int64, typ uint32, payload []byte) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(frames))
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(payload)))
	w.buf = binary.LittleEndian.AppendUint32(w.buf, typ)
	w.buf = append(w.buf, payload...)
	w.pad()
}

// MIDI appends a midi:MidiEvent record. msg is typically built with
// gitlab.com/gomidi/midi/v2, e.g. midi.NoteOn(0, 60, 100).
func (w *Writer) MIDI(frames int64, msg []byte) {
	w.Record(frames, w.urids.MIDIEvent, msg)
}

// Properties appends a time:Position object carrying props. Frame
// properties are written as atom:Long, the others as atom:Float.
func (w *Writer) Properties(frames int64, props ...Property) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(frames))
	sizeAt := len(w.buf)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, 0)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.Object)
	start := len(w.buf)

	w.buf = binary.LittleEndian.AppendUint32(w.buf, 0) // id
	w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.TimePosition)

	for _, p := range props {
		var key uint32

		switch p.Key {
		case PropertyFrame:
			key = w.urids.TimeFrame
		case PropertySpeed:
			key = w.urids.TimeSpeed
		case PropertyBPM:
			key = w.urids.TimeBPM
		default:
			continue
		}

		w.buf = binary.LittleEndian.AppendUint32(w.buf, key)
		w.buf = binary.LittleEndian.AppendUint32(w.buf, 0) // context

		if p.Key == PropertyFrame {
			w.buf = binary.LittleEndian.AppendUint32(w.buf, 8)
			w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.Long)
			w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(p.Long))
		} else {
			w.buf = binary.LittleEndian.AppendUint32(w.buf, 4)
			w.buf = binary.LittleEndian.AppendUint32(w.buf, w.urids.Float)
			w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(p.Float))
		}

		w.pad()
	}

	binary.LittleEndian.PutUint32(w.buf[sizeAt:], uint32(len(w.buf)-start))
	w.pad()
}

// Bytes finalizes the sequence header and returns the encoded sequence.
// The slice is reused by the next Reset.
func (w *Writer) Bytes() []byte {
	binary.LittleEndian.PutUint32(w.buf, uint32(len(w.buf)-atomHeaderSize))
	return w.buf
}

func (w *Writer) pad() {
	for len(w.buf)%8 != 0 {
		w.buf = append(w.buf, 0)
	}
}
