package render

import (
	"fmt"
	"time"

	"github.com/sanctra/sanctra/catalog"
	"github.com/sanctra/sanctra/fields"
	"github.com/sanctra/sanctra/utils"
)

// cacheKey identifies a render by everything that shapes its bytes.
func cacheKey(site string, p Params) string {
	return fmt.Sprintf("%s|%d|%g|%d", site, p.SampleRate, p.Duration, p.Seed)
}

// countRender bumps the per-site render counters and records the request
// that served last. Redis being absent or down only loses the counters,
// never the render.
func (s *Service) countRender(site catalog.Site, p Params) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Incr(site.Name + ":renders").Err(); err != nil {
		s.Logger.WithError(err).Debug("render counters skipped")
		return
	}
	s.Redis.ZIncrBy("sites:renders", 1, site.Name)
	last := &fields.LastRender{
		Site:       site.Name,
		SampleRate: p.SampleRate,
		DurationS:  p.Duration,
		Seed:       p.Seed,
		At:         time.Now().UTC(),
	}
	s.Redis.HSet("renders:last", site.Name, last)
	utils.SaveRedisList(s.Redis, "renders:recent", last)
}
