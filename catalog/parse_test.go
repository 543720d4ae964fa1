package catalog

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestParseRT60(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 3.0},
		{"   ", 3.0},
		{"2-3", 2.5},
		{"10-11", 10.5},
		{"~4", 4.0},
		{"≈2.5", 2.5},
		{"2–3", 2.5},
		{"2—3", 2.5},
		{"6-8", 7.0},
		{"1.5", 1.5},
		{"no digits here", 3.0},
		{"3-4-5", 4.0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseRT60(tt.in); got != tt.want {
				t.Errorf("parseRT60(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		in   string
		want [3]float64
	}{
		{"", [3]float64{10, 10, 10}},
		{"10.47 x 5.235 x 5.827", [3]float64{10.47, 5.235, 5.827}},
		{"57x50x48", [3]float64{57, 50, 48}},
		{"57×50×48", [3]float64{57, 50, 48}},
		{"Dome 31m diam, 55m high", [3]float64{31, 31, 55}},
		{"43m diameter, 22m height", [3]float64{43, 43, 22}},
		{"205m long", [3]float64{205, 10, 5}},
		{"230m length approx", [3]float64{230, 10, 5}},
		{"~10 x 5 x 6", [3]float64{10, 5, 6}},
		{"190 x 55 x 15 (approx hall)", [3]float64{190, 55, 15}},
		{"long x 5 x 5 (tunnel proxy)", [3]float64{5, 5, 5}},
		{"12 x 8", [3]float64{12, 8, 8}},
		{"8 x 12", [3]float64{8, 12, 8}},
		{"20", [3]float64{20, 20, 10}},
		{"4", [3]float64{4, 4, 5}},
		{"no numbers at all", [3]float64{10, 10, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseDims(tt.in); got != tt.want {
				t.Errorf("parseDims(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitRegionSite(t *testing.T) {
	tests := []struct {
		in         string
		wantRegion string
		wantName   string
	}{
		{"Egypt / Great Pyramid, King’s Chamber — Giza", "Egypt", "Great Pyramid, King's Chamber — Giza"},
		{"Israel/Palestine / Church of the Holy Sepulchre — Jerusalem", "Israel/Palestine", "Church of the Holy Sepulchre — Jerusalem"},
		{"Stonehenge", "Unknown", "Stonehenge"},
		{"  Peru / Chavín de Huántar  ", "Peru", "Chavín de Huántar"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			region, name := splitRegionSite(tt.in)
			if region != tt.wantRegion || name != tt.wantName {
				t.Errorf("splitRegionSite(%q) = (%q, %q), want (%q, %q)",
					tt.in, region, name, tt.wantRegion, tt.wantName)
			}
		})
	}
}

func TestNormIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		once := norm(s)
		if twice := norm(once); twice != once {
			t.Fatalf("norm not idempotent: %q -> %q -> %q", s, once, twice)
		}
		if strings.ContainsAny(once, "’‘") {
			t.Fatalf("norm left a typographic quote in %q", once)
		}
	})
}

func TestParseDimsNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		dims := parseDims(s)
		for i, d := range dims {
			if d < 0 {
				t.Fatalf("parseDims(%q)[%d] = %v, want >= 0", s, i, d)
			}
		}
	})
}

func TestParseRT60WithinNumberRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(0.1, 50).Draw(t, "lo")
		hi := rapid.Float64Range(lo, 60).Draw(t, "hi")
		in := strconv.FormatFloat(lo, 'f', 2, 64) + "-" + strconv.FormatFloat(hi, 'f', 2, 64)
		got := parseRT60(in)
		if got < lo-0.01 || got > hi+0.01 {
			t.Fatalf("parseRT60(%q) = %v, outside [%v, %v]", in, got, lo, hi)
		}
	})
}

func TestParseRT60NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		if got := parseRT60(s); got < 0 {
			t.Fatalf("parseRT60(%q) = %v, want >= 0", s, got)
		}
	})
}
