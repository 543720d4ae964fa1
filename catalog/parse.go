package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	diameterRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m\s*(?:diam|diameter)`)
	heightRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m\s*(?:high|height)`)
	lengthRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*m\s*(?:long|length)`)
)

// norm folds typographic apostrophes and trims whitespace. Site lookups and
// stored names go through the same fold so curly-quote spellings match.
func norm(s string) string {
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "‘", "'")
	return strings.TrimSpace(s)
}

// parseRT60 reads a survey RT60 cell: a bare number stands, a range like
// "2-3" (any dash variant, with or without ~ or ≈) averages, and anything
// unreadable falls back to 3 seconds.
func parseRT60(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 3.0
	}
	s = strings.ReplaceAll(s, "~", "")
	s = strings.ReplaceAll(s, "≈", "")
	s = strings.ReplaceAll(s, "–", "-")
	s = strings.ReplaceAll(s, "—", "-")
	matches := numberRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return 3.0
	}
	sum := 0.0
	for _, m := range matches {
		v, _ := strconv.ParseFloat(m, 64)
		sum += v
	}
	return sum / float64(len(matches))
}

// parseDims coerces free-text dimension cells to (L, W, H) meters:
//
//	"10.47 x 5.235 x 5.827"         three numbers in order
//	"Dome 31m diam, 55m high"       dome cell as (diam, diam, height)
//	"205m long"                     corridor proxy (L, 10, 5)
//	two numbers                     base rectangle, height = the smaller
//	one number v                    (v, v, v/2) for large v, else height 5
//
// Unparseable cells fall back to a 10 m cube.
func parseDims(s string) [3]float64 {
	if s == "" {
		return [3]float64{10, 10, 10}
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "×", "x")

	dmatch := diameterRe.FindStringSubmatch(s)
	hmatch := heightRe.FindStringSubmatch(s)
	if dmatch != nil && hmatch != nil {
		d, _ := strconv.ParseFloat(dmatch[1], 64)
		h, _ := strconv.ParseFloat(hmatch[1], 64)
		return [3]float64{d, d, h}
	}

	if lmatch := lengthRe.FindStringSubmatch(s); lmatch != nil {
		l, _ := strconv.ParseFloat(lmatch[1], 64)
		return [3]float64{l, 10, 5}
	}

	var vals []float64
	for _, m := range numberRe.FindAllString(s, -1) {
		v, _ := strconv.ParseFloat(m, 64)
		vals = append(vals, v)
	}
	switch {
	case len(vals) >= 3:
		return [3]float64{vals[0], vals[1], vals[2]}
	case len(vals) == 2:
		h := vals[0]
		if vals[1] < h {
			h = vals[1]
		}
		return [3]float64{vals[0], vals[1], h}
	case len(vals) == 1:
		v := vals[0]
		h := 5.0
		if v > 6 {
			h = v / 2
		}
		return [3]float64{v, v, h}
	}
	return [3]float64{10, 10, 10}
}

// splitRegionSite splits a "Region / Site — City" cell on the first " / ".
// Cells without the separator land in region "Unknown".
func splitRegionSite(s string) (string, string) {
	s = norm(s)
	if before, after, ok := strings.Cut(s, " / "); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "Unknown", s
}
