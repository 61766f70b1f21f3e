package event

import "encoding/binary"

// reader is a bounds-checked little-endian cursor over a byte region.
// Reads past the end leave the cursor in place and report false.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) u32() (uint32, bool) {
	if r.remaining() < 4 {
		return 0, false
	}

	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4

	return v, true
}

func (r *reader) i64() (int64, bool) {
	if r.remaining() < 8 {
		return 0, false
	}

	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8

	return int64(v), true
}

// bytes returns the next n bytes without copying.
func (r *reader) bytes(n int) ([]byte, bool) {
	if n < 0 || r.remaining() < n {
		return nil, false
	}

	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b, true
}

// align advances to the next multiple of 8, clamped to the end.
func (r *reader) align() {
	r.pos = min(pad8(r.pos), len(r.buf))
}

// pad8 rounds n up to a multiple of 8.
func pad8(n int) int {
	return (n + 7) &^ 7
}
