package acoustics

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sanctra/sanctra/catalog"
)

func testSite() catalog.Site {
	return catalog.Site{
		Name:      "Test Hall — Nowhere",
		Region:    "Atlantis",
		Status:    "Modeled/Simulated",
		RT60:      2.5,
		Dims:      [3]float64{10, 5, 6},
		Geometry:  "Plain box.",
		SimMethod: "Shoebox.",
		Sources:   "None.",
	}
}

func TestCompute(t *testing.T) {
	fp := Compute(testSite(), Options{FmaxHz: DefaultFmaxHz, TopN: DefaultTopN})

	if fp.Site != "Test Hall — Nowhere" || fp.Region != "Atlantis" {
		t.Fatalf("identity fields wrong: %+v", fp)
	}
	if fp.Volume != 300 || fp.SurfaceArea != 280 {
		t.Fatalf("geometry wrong: V=%v S=%v", fp.Volume, fp.SurfaceArea)
	}
	if !near(fp.Absorption, 0.069) {
		t.Fatalf("absorption = %v, want 0.069", fp.Absorption)
	}
	if len(fp.RT60ByBand) != len(StdBands) {
		t.Fatalf("bands = %d, want %d", len(fp.RT60ByBand), len(StdBands))
	}
	for i, b := range fp.RT60ByBand {
		if b.Band != StdBands[i] {
			t.Fatalf("band %d = %d, want %d", i, b.Band, StdBands[i])
		}
	}
	if fp.Schroeder == nil || !near(*fp.Schroeder, 182.57418583505535) {
		t.Fatalf("schroeder = %v", fp.Schroeder)
	}
	if len(fp.Modes) != DefaultTopN {
		t.Fatalf("modes = %d, want %d", len(fp.Modes), DefaultTopN)
	}
	if len(fp.Taps) != 6 {
		t.Fatalf("taps = %d, want 6", len(fp.Taps))
	}
	if fp.TailRef != 2.5 {
		t.Fatalf("tail = %v, want 2.5", fp.TailRef)
	}
	if fp.Method != "simulation_only_shoebox_analytics" {
		t.Fatalf("method = %q", fp.Method)
	}
	if fp.Notes != "Plain box." || fp.SimMethod != "Shoebox." || fp.Sources != "None." {
		t.Fatalf("passthrough fields wrong: %+v", fp)
	}
}

func TestComputeJSONShape(t *testing.T) {
	fp := Compute(testSite(), Options{FmaxHz: DefaultFmaxHz, TopN: DefaultTopN})
	b, err := json.Marshal(fp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := []string{
		"site", "region", "status", "dims_m", "volume_m3", "surface_area_m2",
		"absorption_avg", "rt60_s_by_band", "schroeder_freq_hz", "modal_summary",
		"early_reflection_taps", "ir_tail_sec_reference", "method", "notes",
		"sim_method", "sources",
	}
	if len(m) != len(keys) {
		t.Fatalf("payload has %d keys, want %d: %s", len(m), len(keys), b)
	}
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			t.Fatalf("payload missing %q: %s", k, b)
		}
	}
	if !strings.HasPrefix(string(m["rt60_s_by_band"]), "{") {
		t.Fatalf("rt60_s_by_band not an object: %s", m["rt60_s_by_band"])
	}
	if !strings.HasPrefix(string(m["early_reflection_taps"]), "[[") {
		t.Fatalf("taps not a nested array: %s", m["early_reflection_taps"])
	}
}

func TestComputeDegenerate(t *testing.T) {
	site := testSite()
	site.RT60 = 0

	fp := Compute(site, Options{FmaxHz: 10, TopN: DefaultTopN})
	if fp.Schroeder != nil {
		t.Fatalf("schroeder = %v, want nil", *fp.Schroeder)
	}
	if fp.Absorption != 0.2 {
		t.Fatalf("absorption = %v, want fallback 0.2", fp.Absorption)
	}
	if fp.TailRef != 1 {
		t.Fatalf("tail = %v, want 1", fp.TailRef)
	}

	b, err := json.Marshal(fp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"schroeder_freq_hz":null`) {
		t.Fatalf("schroeder not null in JSON: %s", b)
	}
	if !strings.Contains(string(b), `"modal_summary":[]`) {
		t.Fatalf("empty modes not []: %s", b)
	}
}

func TestComputeBandSelection(t *testing.T) {
	// nil bands fall back to the standard set, an empty slice stays empty
	fp := Compute(testSite(), Options{FmaxHz: 100, TopN: 4})
	if len(fp.RT60ByBand) != len(StdBands) {
		t.Fatalf("nil bands: got %d, want %d", len(fp.RT60ByBand), len(StdBands))
	}

	fp = Compute(testSite(), Options{Bands: []int{}, FmaxHz: 100, TopN: 4})
	if len(fp.RT60ByBand) != 0 {
		t.Fatalf("empty bands: got %d, want 0", len(fp.RT60ByBand))
	}
	b, err := json.Marshal(fp.RT60ByBand)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "{}" {
		t.Fatalf("empty bands marshal = %s, want {}", b)
	}

	fp = Compute(testSite(), Options{Bands: []int{1000}, FmaxHz: 100, TopN: 4})
	if len(fp.RT60ByBand) != 1 || fp.RT60ByBand[0].Band != 1000 {
		t.Fatalf("custom bands: %+v", fp.RT60ByBand)
	}
}
