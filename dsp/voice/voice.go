package voice

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-synth/dsp/envelope"
	"github.com/cwbudde/algo-synth/dsp/filter/biquad"
	"github.com/cwbudde/algo-synth/dsp/waveform"
)

// held marks a voice whose note has not been released.
const held = math.MaxInt64

// Patch is the sound a note-on snapshots into its voice. Changing a Patch
// after the note-on does not affect sounding voices.
type Patch struct {
	Wave waveform.Kind
	// Secondary is the modulator template: Freq is a multiplier of the note
	// frequency and Amp the modulation depth. Kind Off disables FM.
	Secondary waveform.Wave
	Envelope  envelope.Params
	// Filter is the per-voice cascade. Empty means no filtering.
	Filter []biquad.Coefficients
}

// Voice is one slot of the pool.
type Voice struct {
	note      int32 // -1 when never used
	start     int64
	end       int64
	primary   waveform.Wave
	secondary waveform.Wave
	fm        bool
	sustained bool
	env       envelope.Params
	filter    biquad.Chain
	pcg       *rand.PCG
	noise     *rand.Rand
}

func (v *Voice) init(filterSections int) {
	v.note = -1
	v.end = 0
	v.filter.Init(filterSections)
	v.pcg = rand.NewPCG(0, 0)
	v.noise = rand.New(v.pcg)
}

// free reports whether the voice can take a new note at sample now.
func (v *Voice) free(now int64) bool {
	if v.note < 0 {
		return true
	}

	if v.end == held {
		return false
	}

	return v.env.Silent(v.end-v.start, now-v.start)
}

func (v *Voice) released() bool {
	return v.end != held
}

func (v *Voice) configure(pitch int, velocity float64, start int64, freq float64, p *Patch, seed uint64) {
	v.note = int32(pitch)
	v.start = start
	v.end = held
	v.sustained = false
	v.env = p.Envelope
	v.primary = waveform.New(p.Wave, freq, velocity)

	v.fm = p.Secondary.Kind != waveform.Off
	if v.fm {
		v.secondary = p.Secondary.Secondary(freq)
	} else {
		v.secondary = waveform.Wave{Kind: waveform.Off}
	}

	v.pcg.Seed(seed, uint64(start))
	v.filter.Load(p.Filter)
}

func (v *Voice) release(at int64) {
	if at < v.end {
		v.end = at
	}
}

// render writes the voice output for samples now .. now+len(buf)-1.
func (v *Voice) render(buf []float64, now int64) {
	first := 0
	if v.start > now {
		first = int(min(v.start-now, int64(len(buf))))
		for i := range first {
			buf[i] = 0
		}
	}

	et := v.end - v.start
	for i := first; i < len(buf); i++ {
		rt := now + int64(i) - v.start
		phase := float64(rt)

		var fm float64
		if v.fm {
			fm = v.secondary.Sample(phase, 0, v.noise)
		}

		buf[i] = v.env.Gain(et, rt) * v.primary.Sample(phase, fm, v.noise)
	}

	v.filter.ProcessBlock(buf[first:])
}
