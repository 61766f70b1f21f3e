package synth

import (
	"log/slog"

	"github.com/cwbudde/algo-synth/dsp/core"
	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/event"
	"github.com/cwbudde/algo-synth/dsp/rack"
	"github.com/cwbudde/algo-synth/dsp/voice"
)

type config struct {
	proc     core.ProcessorConfig
	procOpts []core.ProcessorOption
	steal    voice.StealPolicy
	seed     uint64
	curve    envelope.Curve
	logger   *slog.Logger
	rackSpec []byte
	urids    event.URIDs
	eventCap int
}

func defaultConfig(sampleRate float64) config {
	return config{
		procOpts: []core.ProcessorOption{core.WithSampleRate(sampleRate)},
		steal:    voice.StealReleasing,
		seed:     1,
		logger:   slog.New(slog.DiscardHandler),
		rackSpec: []byte(rack.DefaultSpec),
		urids:    event.DefaultURIDs(),
		eventCap: 256,
	}
}

// Option configures an Engine.
type Option func(*config)

// WithProcessorOptions applies shared processor options.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(c *config) {
		c.procOpts = append(c.procOpts, opts...)
	}
}

// WithBlockSize sets the largest span rendered in one pass. Longer Render
// calls are processed in several passes. Default 1024.
func WithBlockSize(n int) Option {
	return WithProcessorOptions(core.WithBlockSize(n))
}

// WithVoices sets the polyphony. Default 4.
func WithVoices(n int) Option {
	return WithProcessorOptions(core.WithVoices(n))
}

// WithFilterOrder sets the Butterworth order of the per-voice lowpass.
// Default 2.
func WithFilterOrder(order int) Option {
	return WithProcessorOptions(core.WithFilterOrder(order))
}

// WithSteal sets what happens to a note-on when every voice is busy.
func WithSteal(p voice.StealPolicy) Option {
	return func(c *config) {
		c.steal = p
	}
}

// WithSeed seeds the noise generators.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithEnvelopeCurve selects the amplitude curve applied to the ADSR.
func WithEnvelopeCurve(curve envelope.Curve) Option {
	return func(c *config) {
		c.curve = curve
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRack replaces the routing graph with a JSON rack spec. The spec must
// contain modules named "voices" and "out".
func WithRack(spec []byte) Option {
	return func(c *config) {
		c.rackSpec = spec
	}
}

// WithURIDs sets the host's URID table. The default is event.DefaultURIDs.
func WithURIDs(u event.URIDs) Option {
	return func(c *config) {
		c.urids = u
	}
}

// WithEventCapacity presizes the decoded event list. Default 256.
func WithEventCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.eventCap = n
		}
	}
}
