// Package acoustics derives compact room-acoustic analytics for shoebox
// approximations of surveyed spaces. All quantities are analytic; nothing
// here touches audio buffers.
package acoustics

import (
	"math"
	"sort"
	"strconv"
)

// SpeedOfSound is the propagation speed used throughout, in m/s.
const SpeedOfSound = 343.0

// StdBands are the octave bands reported when a request names none.
var StdBands = []int{125, 250, 500, 1000, 2000, 4000}

// Defaults for modal analysis when a request leaves them out.
const (
	DefaultFmaxHz = 2000.0
	DefaultTopN   = 24
)

// Volume returns L*W*H in cubic meters.
func Volume(dims [3]float64) float64 {
	return dims[0] * dims[1] * dims[2]
}

// Surface returns the total inner surface of the box in square meters.
func Surface(dims [3]float64) float64 {
	l, w, h := dims[0], dims[1], dims[2]
	return 2.0 * (l*w + l*h + w*h)
}

// AvgAbsorption inverts Sabine's equation for the mean absorption
// coefficient, clamped to [0.02, 0.9]. Rooms without a usable RT60 or
// surface report 0.2.
func AvgAbsorption(rt60, volume, surface float64) float64 {
	if rt60 <= 0 || surface <= 0 {
		return 0.2
	}
	a := 0.161 * volume / (rt60 * surface)
	return math.Min(math.Max(a, 0.02), 0.9)
}

// BandRT60 is one octave band's reverberation time.
type BandRT60 struct {
	Band int
	RT60 float64
}

// RT60Bands holds per-band reverberation times in request band order. The
// order matters for Nearest tie-breaks; JSON output is an object keyed by
// the decimal band.
type RT60Bands []BandRT60

// TiltByBand spreads a broadband RT60 across bands with a gentle
// high-frequency rolloff, floored at 0.2 s. Duplicate bands keep one entry.
func TiltByBand(baseRT float64, bands []int) RT60Bands {
	out := make(RT60Bands, 0, len(bands))
	seen := make(map[int]bool, len(bands))
	for _, f := range bands {
		if seen[f] {
			continue
		}
		seen[f] = true
		tilt := -0.18 * math.Log10(math.Max(float64(f), 125)/500.0)
		out = append(out, BandRT60{Band: f, RT60: math.Max(0.2, baseRT+tilt)})
	}
	return out
}

// Nearest returns the RT60 of the band closest to f in Hz. The first band
// wins ties; an empty set reads as 3 seconds.
func (r RT60Bands) Nearest(f float64) float64 {
	if len(r) == 0 {
		return 3.0
	}
	best := r[0]
	bestDist := math.Abs(float64(best.Band) - f)
	for _, b := range r[1:] {
		if d := math.Abs(float64(b.Band) - f); d < bestDist {
			best, bestDist = b, d
		}
	}
	return best.RT60
}

// MarshalJSON renders the bands as a JSON object keyed by decimal band.
func (r RT60Bands) MarshalJSON() ([]byte, error) {
	b := []byte{'{'}
	for i, band := range r {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendQuote(b, strconv.Itoa(band.Band))
		b = append(b, ':')
		b = appendJSONFloat(b, band.RT60)
	}
	return append(b, '}'), nil
}

// SchroederFrequency is the crossover between modal and statistical
// behavior, in Hz. Nil when volume or RT60 is not positive.
func SchroederFrequency(rt60, volume float64) *float64 {
	if volume <= 0 || rt60 <= 0 {
		return nil
	}
	f := 2000.0 * math.Sqrt(rt60/volume)
	return &f
}

// TailReference clamps the broadband RT60 to [1, 3] seconds for use as a
// decay-tail reference.
func TailReference(rt60 float64) float64 {
	return math.Min(3.0, math.Max(1.0, rt60))
}

// appendJSONFloat formats v the way encoding/json does, so hand-built
// objects match marshaled ones byte for byte.
func appendJSONFloat(b []byte, v float64) []byte {
	abs := math.Abs(v)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, v, format, -1, 64)
	if format == 'e' {
		// trim the leading zero of a two-digit exponent
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}

// sortModes orders by rising frequency, then falling energy, keeping the
// generation order of fully equal entries.
func sortModes(modes []Mode) {
	sort.SliceStable(modes, func(i, j int) bool {
		if modes[i].Freq != modes[j].Freq {
			return modes[i].Freq < modes[j].Freq
		}
		return modes[i].RelEnergy > modes[j].RelEnergy
	})
}
