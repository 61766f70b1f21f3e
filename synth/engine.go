package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/event"
	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/filter/design"
	"github.com/cwbudde/algo-synth/dsp/rack"
	"github.com/cwbudde/algo-synth/dsp/voice"
)

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite
	// sample rates.
	ErrInvalidSampleRate = errors.New("synth: invalid sample rate")
	// ErrInvalidRack is returned when a rack spec lacks a voices module with
	// an "in" input or an out module with an "out" output.
	ErrInvalidRack = errors.New("synth: rack needs a voices module with an in port and an out module")
)

// Sustain pedal controller number.
const controllerSustain = 64

// Engine renders blocks of audio from host events. All methods except
// Stats and Transport must be called from the render goroutine.
type Engine struct {
	cfg    config
	logger *slog.Logger

	decoder *event.Decoder
	bank    *voice.Bank
	rack    *rack.Rack

	rackIn      int
	rackInPort  int
	rackOut     int
	rackOutPort int

	events []event.Event
	mix    []float64

	patch     voice.Patch
	filterBuf []biquad.Coefficients
	filter    filterKey
	filterSet bool

	decodeBurst bool

	// transport, owned by the render goroutine
	tFrame float64
	tSpeed float32
	tBPM   float32
	tValid bool
	tMark  int

	stats counters
	trans transport
}

// New builds an engine for sampleRate Hz.
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	cfg := defaultConfig(sampleRate)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cfg.proc = core.ApplyProcessorOptions(cfg.procOpts...)

	bank, err := voice.NewBank(cfg.proc, voice.WithSteal(cfg.steal), voice.WithSeed(cfg.seed))
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	builder, err := rack.ParseSpec(cfg.rackSpec)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	r, err := builder.Build(cfg.proc.SampleRate, cfg.proc.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	in, inPort, err := rackPort(r, rack.InputModule, "in", rack.Kind.InputIndex)
	if err != nil {
		return nil, err
	}

	out, outPort, err := rackPort(r, rack.OutputModule, "out", rack.Kind.OutputIndex)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		logger:      cfg.logger,
		decoder:     event.NewDecoder(cfg.urids),
		bank:        bank,
		rack:        r,
		rackIn:      in,
		rackInPort:  inPort,
		rackOut:     out,
		rackOutPort: outPort,
		events:      make([]event.Event, 0, cfg.eventCap),
		mix:         make([]float64, cfg.proc.BlockSize),
		filterBuf:   make([]biquad.Coefficients, 0, design.Sections(cfg.proc.FilterOrder)),
	}

	e.logger.Debug("synth engine ready",
		"sample_rate", cfg.proc.SampleRate,
		"block_size", cfg.proc.BlockSize,
		"voices", cfg.proc.Voices,
		"filter_order", cfg.proc.FilterOrder,
		"steal", cfg.steal.String(),
		"rack_modules", r.Len(),
	)

	return e, nil
}

// rackPort resolves the module called name and its port called port.
func rackPort(r *rack.Rack, name, port string, index func(rack.Kind, string) (int, bool)) (int, int, error) {
	idx, ok := r.Lookup(name)
	if !ok {
		return 0, 0, fmt.Errorf("%w: no %s module", ErrInvalidRack, name)
	}

	kind := r.Module(idx).Kind()

	p, ok := index(kind, port)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s module of kind %s has no %s port", ErrInvalidRack, name, kind, port)
	}

	return idx, p, nil
}

// SampleRate returns the engine sample rate in Hz.
func (e *Engine) SampleRate() float64 {
	return e.cfg.proc.SampleRate
}

// Config returns the resolved processor configuration.
func (e *Engine) Config() core.ProcessorConfig {
	return e.cfg.proc
}

// Render fills pcm with the next len(pcm) samples. events is the block's
// atom sequence; frame offsets are relative to pcm[0]. Events beyond the
// block are applied at its end.
func (e *Engine) Render(pcm []float32, events []byte, c Controls) {
	n := len(pcm)

	e.applyControls(c)
	e.decode(events)

	e.tMark = 0
	pos := 0

	for i := range e.events {
		ev := &e.events[i]

		at := int(min(max(ev.Frames, 0), int64(n)))
		if at > pos {
			e.renderSpan(pcm[pos:at])
			pos = at
		}

		e.apply(ev, at)
	}

	e.renderSpan(pcm[pos:])
	e.advanceTransport(n)

	e.stats.blocks.Add(1)
	e.stats.frames.Add(uint64(n))
	e.stats.publish(e.bank.Stats())
}

// Reset silences all voices, clears rack state and forgets the transport.
// Counters are kept.
func (e *Engine) Reset() {
	e.bank.Reset()
	e.rack.Reset()

	e.tFrame, e.tSpeed, e.tBPM, e.tValid = 0, 0, 0, false
	e.trans.reset()
	e.stats.publish(e.bank.Stats())
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return e.stats.snapshot()
}

// Transport returns the host transport state as of the end of the last
// block.
func (e *Engine) Transport() Transport {
	return e.trans.load()
}

func (e *Engine) applyControls(c Controls) {
	c.patch(&e.patch, e.cfg.proc.SampleRate, e.cfg.curve)

	key := c.filterKey()
	if e.filterSet && key == e.filter {
		return
	}

	e.filter = key
	e.filterSet = true

	if !key.enabled {
		e.patch.Filter = nil
		return
	}

	coeffs, err := design.AppendButterworthLP(e.filterBuf[:0], float64(key.cutoff), e.cfg.proc.FilterOrder, e.cfg.proc.SampleRate)
	if err != nil {
		e.patch.Filter = nil
		e.stats.filterErrors.Add(1)
		e.logger.Warn("filter settings rejected, bypassing",
			"cutoff_hz", c.FilterCutoffHz,
			"order", e.cfg.proc.FilterOrder,
			"error", err,
		)

		return
	}

	e.filterBuf = coeffs
	e.patch.Filter = coeffs
}

func (e *Engine) decode(buf []byte) {
	if len(buf) == 0 {
		e.events = e.events[:0]
		e.decodeBurst = false

		return
	}

	var res event.Result

	e.events, res = e.decoder.Decode(buf, e.events[:0])
	e.stats.events.Add(uint64(len(e.events)))

	if res.Errors == 0 {
		e.decodeBurst = false
		return
	}

	e.stats.decodeErrors.Add(uint64(res.Errors))

	if !e.decodeBurst {
		e.decodeBurst = true
		e.logger.Warn("malformed events skipped",
			"errors", res.Errors,
			"records", res.Records,
			"error", res.Err,
		)
	}
}

func (e *Engine) apply(ev *event.Event, at int) {
	switch ev.Kind {
	case event.KindNoteOn:
		e.bank.NoteOn(int(ev.Note.Pitch), int(ev.Note.Velocity), 0, &e.patch)
	case event.KindNoteOff:
		e.bank.NoteOff(int(ev.Note.Pitch), 0)
	case event.KindControl:
		switch ev.Control.Controller {
		case controllerSustain:
			e.bank.Sustain(ev.Control.Value >= 64, 0)
		case event.ControllerAllSoundOff, event.ControllerAllNotesOff:
			e.bank.AllNotesOff(0)
		}
	case event.KindProperty:
		e.applyProperty(ev.Property, at)
	case event.KindMIDIOther:
	}
}

func (e *Engine) applyProperty(p event.Property, at int) {
	// Bring the position up to this offset before applying the change.
	e.advanceTransport(at)
	e.tValid = true

	switch p.Key {
	case event.PropertyFrame:
		e.tFrame = float64(p.Long)
	case event.PropertySpeed:
		e.tSpeed = p.Float
	case event.PropertyBPM:
		e.tBPM = p.Float
	}
}

// advanceTransport moves the transport position from the last mark to
// offset at within the block and publishes it.
func (e *Engine) advanceTransport(at int) {
	if e.tValid {
		e.tFrame += float64(at-e.tMark) * float64(e.tSpeed)
	}

	e.tMark = at

	if !e.tValid {
		return
	}

	e.trans.frame.Store(int64(e.tFrame))
	e.trans.speed.Store(math.Float32bits(e.tSpeed))
	e.trans.bpm.Store(math.Float32bits(e.tBPM))
	e.trans.valid.Store(true)
}

// renderSpan renders voices and rack into pcm in passes of at most the
// configured block size.
func (e *Engine) renderSpan(pcm []float32) {
	maxBlock := e.rack.MaxBlock()

	for len(pcm) > 0 {
		m := min(len(pcm), maxBlock)
		buf := e.mix[:m]

		e.bank.Render(buf)
		e.rack.Feed(e.rackIn, e.rackInPort, buf)
		e.rack.RenderBlock(m)
		core.ToFloat32(pcm[:m], e.rack.Extract(e.rackOut, e.rackOutPort, m))

		pcm = pcm[m:]
	}
}
