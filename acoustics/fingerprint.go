package acoustics

import "github.com/sanctra/sanctra/catalog"

// Options narrow a fingerprint computation. A nil Bands means StdBands;
// an explicitly empty slice stays empty.
type Options struct {
	Bands  []int
	FmaxHz float64
	TopN   int
}

// Fingerprint is the compact analytic description of a site's acoustics.
type Fingerprint struct {
	Site        string     `json:"site"`
	Region      string     `json:"region"`
	Status      string     `json:"status"`
	Dims        [3]float64 `json:"dims_m"`
	Volume      float64    `json:"volume_m3"`
	SurfaceArea float64    `json:"surface_area_m2"`
	Absorption  float64    `json:"absorption_avg"`
	RT60ByBand  RT60Bands  `json:"rt60_s_by_band"`
	Schroeder   *float64   `json:"schroeder_freq_hz"`
	Modes       []Mode     `json:"modal_summary"`
	Taps        []Tap      `json:"early_reflection_taps"`
	TailRef     float64    `json:"ir_tail_sec_reference"`
	Method      string     `json:"method"`
	Notes       string     `json:"notes"`
	SimMethod   string     `json:"sim_method"`
	Sources     string     `json:"sources"`
}

// Compute derives the full fingerprint for a site. Geometry notes ride
// along as "notes"; no audio is rendered here.
func Compute(site catalog.Site, opts Options) Fingerprint {
	bands := opts.Bands
	if bands == nil {
		bands = StdBands
	}

	volume := Volume(site.Dims)
	surface := Surface(site.Dims)
	byBand := TiltByBand(site.RT60, bands)
	alpha := AvgAbsorption(site.RT60, volume, surface)

	return Fingerprint{
		Site:        site.Name,
		Region:      site.Region,
		Status:      site.Status,
		Dims:        site.Dims,
		Volume:      volume,
		SurfaceArea: surface,
		Absorption:  alpha,
		RT60ByBand:  byBand,
		Schroeder:   SchroederFrequency(site.RT60, volume),
		Modes:       ModalSummary(site.Dims, opts.FmaxHz, opts.TopN, byBand),
		Taps:        EarlyReflections(site.Dims, alpha, 6),
		TailRef:     TailReference(site.RT60),
		Method:      "simulation_only_shoebox_analytics",
		Notes:       site.Geometry,
		SimMethod:   site.SimMethod,
		Sources:     site.Sources,
	}
}
