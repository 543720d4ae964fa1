package acoustics

import "math"

// ln(10^6); a 60 dB decay over T seconds gives a half-power modal
// bandwidth of decay60/(pi*T).
const decay60 = 13.815510558

// fwhmToSigma converts a full-width-half-maximum bandwidth to the sigma of
// a gaussian with the same width.
const fwhmToSigma = 2.355

// Mode is one standing-wave resonance of the box.
type Mode struct {
	Freq       float64 `json:"freq_hz"`
	Nx         int     `json:"nx"`
	Ny         int     `json:"ny"`
	Nz         int     `json:"nz"`
	Type       string  `json:"type"`
	Bandwidth  float64 `json:"bandwidth_hz"`
	GaussSigma float64 `json:"gauss_sigma_hz"`
	RelEnergy  float64 `json:"rel_energy"`
}

func modeType(nx, ny, nz int) string {
	n := 0
	if nx > 0 {
		n++
	}
	if ny > 0 {
		n++
	}
	if nz > 0 {
		n++
	}
	switch n {
	case 1:
		return "axial"
	case 2:
		return "tangential"
	}
	return "oblique"
}

// ModalSummary enumerates box modes with indices below 12 per axis up to
// fmax, ordered by frequency, and keeps the topN strongest slots. Energies
// of the kept modes are normalized to sum to one. A negative topN counts
// back from the end of the list; bands supplies the per-band RT60 used
// for modal bandwidth, with 3 s assumed when empty.
func ModalSummary(dims [3]float64, fmax float64, topN int, bands RT60Bands) []Mode {
	lx := math.Max(dims[0], 1e-6)
	ly := math.Max(dims[1], 1e-6)
	lz := math.Max(dims[2], 1e-6)

	var modes []Mode
	for nx := 0; nx < 12; nx++ {
		for ny := 0; ny < 12; ny++ {
			for nz := 0; nz < 12; nz++ {
				if nx == 0 && ny == 0 && nz == 0 {
					continue
				}
				fx := float64(nx) / lx
				fy := float64(ny) / ly
				fz := float64(nz) / lz
				f := (SpeedOfSound / 2.0) * math.Sqrt(fx*fx+fy*fy+fz*fz)
				if f > fmax {
					continue
				}
				t := bands.Nearest(f)
				b := decay60 / (math.Pi * math.Max(t, 1e-6))
				e := (1.0 / math.Max(b, 1e-6)) * (1.0 / math.Max(f, 50.0))
				modes = append(modes, Mode{
					Freq:       f,
					Nx:         nx,
					Ny:         ny,
					Nz:         nz,
					Type:       modeType(nx, ny, nz),
					Bandwidth:  b,
					GaussSigma: b / fwhmToSigma,
					RelEnergy:  e,
				})
			}
		}
	}
	sortModes(modes)

	n := topN
	if n < 0 {
		n += len(modes)
	}
	if n < 0 {
		n = 0
	}
	if n > len(modes) {
		n = len(modes)
	}
	sel := modes[:n:n]

	sum := 0.0
	for _, m := range sel {
		sum += m.RelEnergy
	}
	if sum == 0 {
		sum = 1.0
	}
	out := make([]Mode, len(sel))
	for i, m := range sel {
		m.RelEnergy /= sum
		out[i] = m
	}
	return out
}
