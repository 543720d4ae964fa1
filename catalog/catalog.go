// Package catalog holds the embedded sacred-site acoustic survey and its
// parsers. The dataset ships inside the binary; a Catalog is built once at
// startup and is read-only afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"sort"
	"strings"
)

//go:embed sites.tsv
var sitesTSV string

// Site is one parsed survey row.
type Site struct {
	Name      string     `json:"site"`
	Region    string     `json:"region"`
	Status    string     `json:"status"`
	RT60      float64    `json:"rt60"`
	Dims      [3]float64 `json:"dims"`
	Geometry  string     `json:"geometry"`
	SimMethod string     `json:"sim_method"`
	Sources   string     `json:"sources"`
}

// Catalog is an immutable lookup over the survey. Safe for concurrent use.
type Catalog struct {
	sites   map[string]Site
	regions map[string][]string
	names   []string
}

var ErrEmptyDataset = errors.New("catalog: dataset has no rows")

// Load parses the embedded survey.
func Load() (*Catalog, error) {
	return Parse(sitesTSV)
}

// Parse builds a Catalog from tab-separated survey text. The first
// non-blank line is the header; columns are addressed by header name, so
// column order is free. Rows shorter than the header read as empty cells.
// Duplicate site names keep the first row.
func Parse(tsv string) (*Catalog, error) {
	var lines []string
	for _, l := range strings.Split(tsv, "\n") {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil, ErrEmptyDataset
	}

	header := strings.Split(lines[0], "\t")
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	c := &Catalog{
		sites:   make(map[string]Site),
		regions: make(map[string][]string),
	}
	for _, line := range lines[1:] {
		cols := strings.Split(line, "\t")
		cell := func(field string) string {
			i, ok := idx[field]
			if !ok || i >= len(cols) {
				return ""
			}
			return strings.TrimSpace(cols[i])
		}

		region, name := splitRegionSite(cell("Region/Site"))
		site := Site{
			Name:      name,
			Region:    region,
			Status:    cell("Status"),
			RT60:      parseRT60(cell("Estimated RT60 (s)")),
			Dims:      parseDims(cell("Dimensions (m, approx. LxWxH)")),
			Geometry:  cell("Sacred Geometry Notes"),
			SimMethod: cell("Simulation Method"),
			Sources:   cell("Notes/Sources"),
		}

		key := norm(site.Name)
		if _, dup := c.sites[key]; dup {
			continue
		}
		c.sites[key] = site
		c.regions[site.Region] = append(c.regions[site.Region], site.Name)
		c.names = append(c.names, key)
	}

	sort.Strings(c.names)
	for _, names := range c.regions {
		sort.Strings(names)
	}
	return c, nil
}

// Names returns all site names, sorted.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// ByRegion returns region -> sorted site names.
func (c *Catalog) ByRegion() map[string][]string {
	out := make(map[string][]string, len(c.regions))
	for region, names := range c.regions {
		out[region] = append([]string(nil), names...)
	}
	return out
}

// Get looks a site up by name, folding typographic apostrophes the same way
// stored names were folded.
func (c *Catalog) Get(name string) (Site, bool) {
	site, ok := c.sites[norm(name)]
	return site, ok
}

// Len reports how many distinct sites the catalog holds.
func (c *Catalog) Len() int {
	return len(c.sites)
}
