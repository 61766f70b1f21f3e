package synth

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-synth/dsp/voice"
)

// Stats are cumulative engine counters. They may be read from any
// goroutine while Render runs.
type Stats struct {
	Blocks             uint64 // Render calls
	Frames             uint64 // samples rendered
	Events             uint64 // events decoded
	DecodeErrors       uint64 // malformed or truncated records
	NotesDropped       uint64 // note-ons that found no voice
	NotesStolen        uint64 // note-ons that took a busy voice
	NotesRetriggered   uint64 // note-ons that restarted their own voice
	FilterConfigErrors uint64 // rejected filter settings
	ActiveVoices       int    // voices sounding after the last block
}

type counters struct {
	blocks       atomic.Uint64
	frames       atomic.Uint64
	events       atomic.Uint64
	decodeErrors atomic.Uint64
	dropped      atomic.Uint64
	stolen       atomic.Uint64
	retriggered  atomic.Uint64
	filterErrors atomic.Uint64
	active       atomic.Int64
}

func (c *counters) publish(s voice.Stats) {
	c.dropped.Store(uint64(s.Dropped))
	c.stolen.Store(uint64(s.Stolen))
	c.retriggered.Store(uint64(s.Retriggered))
	c.active.Store(int64(s.Active))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Blocks:             c.blocks.Load(),
		Frames:             c.frames.Load(),
		Events:             c.events.Load(),
		DecodeErrors:       c.decodeErrors.Load(),
		NotesDropped:       c.dropped.Load(),
		NotesStolen:        c.stolen.Load(),
		NotesRetriggered:   c.retriggered.Load(),
		FilterConfigErrors: c.filterErrors.Load(),
		ActiveVoices:       int(c.active.Load()),
	}
}

// Transport is the last host transport state seen in the event stream.
type Transport struct {
	Frame int64
	Speed float32
	BPM   float32
	Valid bool // a transport property has been received
}

type transport struct {
	frame atomic.Int64
	speed atomic.Uint32
	bpm   atomic.Uint32
	valid atomic.Bool
}

func (t *transport) load() Transport {
	return Transport{
		Frame: t.frame.Load(),
		Speed: math.Float32frombits(t.speed.Load()),
		BPM:   math.Float32frombits(t.bpm.Load()),
		Valid: t.valid.Load(),
	}
}

func (t *transport) reset() {
	t.frame.Store(0)
	t.speed.Store(0)
	t.bpm.Store(0)
	t.valid.Store(false)
}
