package acoustics

import "math"

// Tap is an early-reflection arrival, [time_ms, energy].
type Tap [2]float64

// TimeMS is the arrival time in milliseconds.
func (t Tap) TimeMS() float64 { return t[0] }

// Energy is the normalized arrival energy.
func (t Tap) Energy() float64 { return t[1] }

// EarlyReflections builds the first n arrivals of the image-source
// expansion: the direct path plus single-axis and two-axis round trips.
// Energies scale with surface reflectance and inverse square distance and
// are normalized to sum to one.
func EarlyReflections(dims [3]float64, alphaAvg float64, n int) []Tap {
	l, w, h := dims[0], dims[1], dims[2]
	paths := []float64{
		0.0,
		2 * l, 2 * w, 2 * h,
		2 * math.Sqrt(l*l+w*w),
		2 * math.Sqrt(l*l+h*h),
	}
	if n < 1 {
		n = 1
	}
	if n > len(paths) {
		n = len(paths)
	}
	paths = paths[:n]

	taps := make([]Tap, 0, len(paths))
	total := 0.0
	for _, d := range paths {
		tms := d / SpeedOfSound * 1000.0
		e := 1.0
		if d != 0.0 {
			bounces := 2
			if d == 2*l || d == 2*w || d == 2*h {
				bounces = 1
			}
			reflectance := math.Pow(1.0-alphaAvg, float64(bounces))
			e = reflectance / math.Max(d*d, 1e-6)
		}
		taps = append(taps, Tap{tms, e})
		total += e
	}
	if total == 0 {
		total = 1.0
	}
	for i := range taps {
		taps[i][1] /= total
	}
	return taps
}
