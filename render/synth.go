// Package render synthesises audible stereo impulse responses from site
// fingerprints and serves them over HTTP. All of the audio math runs
// through algo-dsp so a given seed always produces the same bytes.
package render

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/conv"
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
	"github.com/cwbudde/algo-dsp/dsp/signal"
	"github.com/cwbudde/algo-dsp/dsp/window"

	"github.com/sanctra/sanctra/acoustics"
)

const (
	// ln(10^3); the envelope exp(-decayStop*t/rt60) is 60 dB down at t=rt60.
	decayStop = 6.91
	// modal bed sits 12 dB under the broadband tail
	modalGain = 0.251188643150958
	// interauralOffsetMS widens the image by delaying reflected taps on
	// the right channel.
	interauralOffsetMS = 0.35
	filterOrder        = 4
	fadeAlpha          = 0.05
	peakTarget         = 0.97
)

// Params holds everything besides the site that shapes a render.
type Params struct {
	SampleRate int
	Duration   float64
	Seed       int64
}

// Frames is the exact number of output frames for the params.
func (p Params) Frames() int {
	return int(math.Round(p.Duration * float64(p.SampleRate)))
}

// Result is one finished render.
type Result struct {
	WAV         []byte
	SampleRate  int
	Channels    int
	Duration    float64
	Fingerprint acoustics.Fingerprint
}

// Synthesize renders both channels of an impulse response for fp. The
// channels share the fingerprint but run decorrelated noise seeds, so the
// image has width while staying reproducible.
func Synthesize(fp acoustics.Fingerprint, p Params) (left, right []float64, err error) {
	frames := p.Frames()
	if frames <= 0 {
		return nil, nil, fmt.Errorf("render: %gs at %d Hz rounds to zero frames", p.Duration, p.SampleRate)
	}
	left, err = synthChannel(fp, p.SampleRate, frames, p.Seed, false)
	if err != nil {
		return nil, nil, err
	}
	right, err = synthChannel(fp, p.SampleRate, frames, p.Seed+1, true)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func synthChannel(fp acoustics.Fingerprint, sampleRate, frames int, seed int64, right bool) ([]float64, error) {
	fs := float64(sampleRate)
	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(fs)},
		signal.WithSeed(seed),
	)
	noise, err := gen.WhiteNoise(1.0, frames)
	if err != nil {
		return nil, err
	}

	body := decayedTail(noise, fp.RT60ByBand, fs)
	if bed := modalBed(noise, fp, fs); bed != nil {
		for i, v := range bed {
			body[i] += v * modalGain
		}
	}

	ir, err := conv.Convolve(tapTrain(fp.Taps, fs, frames, right), body)
	if err != nil {
		return nil, err
	}
	ir = ir[:frames]

	fadeOut(ir)
	return signal.Normalize(ir, peakTarget)
}

// decayedTail splits the noise into the standard octave bands and applies
// each band's RT60 decay envelope. The sum comes back peak-normalized so
// the modal bed has a fixed reference level.
func decayedTail(noise []float64, bands acoustics.RT60Bands, fs float64) []float64 {
	tail := make([]float64, len(noise))
	buf := make([]float64, len(noise))
	for _, band := range bands {
		coeffs := octaveBand(float64(band.Band), fs)
		if coeffs == nil {
			continue
		}
		copy(buf, noise)
		biquad.NewChain(coeffs).ProcessBlock(buf)
		applyDecay(buf, band.RT60, fs)
		for i, v := range buf {
			tail[i] += v
		}
	}
	if out, err := signal.Normalize(tail, 1.0); err == nil {
		return out
	}
	return tail
}

// octaveBand designs a Butterworth bandpass one octave wide around
// center. The top band degrades to a plain highpass when its upper edge
// would sit against Nyquist.
func octaveBand(center, fs float64) []biquad.Coefficients {
	nyq := fs / 2
	if center >= nyq {
		return nil
	}
	coeffs := pass.ButterworthHP(center/math.Sqrt2, filterOrder, fs)
	if hi := center * math.Sqrt2; hi < nyq*0.95 {
		coeffs = append(coeffs, pass.ButterworthLP(hi, filterOrder, fs)...)
	}
	return coeffs
}

// modalBed excites one resonator per fingerprint mode with the seeded
// noise. Each resonator sits at the mode frequency with the fingerprint
// bandwidth and rings out with the RT60 of its nearest band.
func modalBed(noise []float64, fp acoustics.Fingerprint, fs float64) []float64 {
	if len(fp.Modes) == 0 {
		return nil
	}
	nyq := fs / 2
	bed := make([]float64, len(noise))
	buf := make([]float64, len(noise))
	mixed := false
	for _, m := range fp.Modes {
		if m.Freq <= 0 || m.Freq >= nyq*0.95 {
			continue
		}
		q := m.Freq / math.Max(m.Bandwidth, 1e-3)
		sec := biquad.NewSection(design.Bandpass(m.Freq, q, fs))
		sec.ProcessBlockTo(buf, noise)
		applyDecay(buf, fp.RT60ByBand.Nearest(m.Freq), fs)
		for i, v := range buf {
			bed[i] += v * m.RelEnergy
		}
		mixed = true
	}
	if !mixed {
		return nil
	}
	if out, err := signal.Normalize(bed, 1.0); err == nil {
		return out
	}
	return bed
}

func applyDecay(buf []float64, rt60, fs float64) {
	if rt60 <= 0 {
		return
	}
	step := math.Exp(-decayStop / (rt60 * fs))
	env := 1.0
	for i := range buf {
		buf[i] *= env
		env *= step
	}
}

// tapTrain lays the early reflection taps out as scaled impulses. Taps
// landing past the end of the render are dropped; the direct tap at t=0
// always survives.
func tapTrain(taps []acoustics.Tap, fs float64, frames int, right bool) []float64 {
	type placed struct {
		idx int
		amp float64
	}
	hits := make([]placed, 0, len(taps))
	last := 0
	for _, t := range taps {
		at := t.TimeMS()
		if right && at > 0 {
			at += interauralOffsetMS
		}
		idx := int(math.Round(at / 1000 * fs))
		if idx >= frames {
			continue
		}
		hits = append(hits, placed{idx, t.Energy()})
		if idx > last {
			last = idx
		}
	}
	if len(hits) == 0 {
		return []float64{1}
	}
	train := make([]float64, last+1)
	for _, h := range hits {
		train[h.idx] += h.amp
	}
	return train
}

// fadeOut tapers the end of the buffer with the back half of a Tukey
// window. The front half is forced to unity so the onset is untouched.
func fadeOut(buf []float64) {
	w, err := window.Tukey(len(buf), fadeAlpha)
	if err != nil {
		return
	}
	for i := range w[:len(w)/2] {
		w[i] = 1
	}
	_ = window.ApplyCoefficientsInPlace(buf, w)
}
