package core

// ProcessorConfig defines the settings shared by every block processor in
// the synth: the rate, the largest block rendered without growing buffers,
// the polyphony and the filter order used for per-voice cascades.
type ProcessorConfig struct {
	SampleRate  float64
	BlockSize   int
	Voices      int
	FilterOrder int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the defaults used by plugin hosts that do
// not announce a maximum block length.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:  48000,
		BlockSize:   1024,
		Voices:      4,
		FilterOrder: 2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the preallocated block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithVoices sets the size of the voice pool.
func WithVoices(voices int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if voices > 0 {
			cfg.Voices = voices
		}
	}
}

// WithFilterOrder sets the Butterworth order of the per-voice lowpass.
func WithFilterOrder(order int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if order > 0 {
			cfg.FilterOrder = order
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
