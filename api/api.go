// Package api serves the public side of the service: catalog lookups over
// the embedded survey and the simulation-only fingerprint endpoint.
// Handlers only read from the catalog; nothing here renders audio.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"

	"github.com/sanctra/sanctra/acoustics"
	"github.com/sanctra/sanctra/catalog"
	"github.com/sanctra/sanctra/fields"
)

// Service wires the survey catalog into the public handlers. Redis is
// optional; when present it keeps per-site fingerprint counters.
type Service struct {
	Sites         *catalog.Catalog
	Redis         *redis.Client
	SanctraConfig fields.SanctraConfig
	Logger        *logrus.Logger
}

// Home lists the public endpoints.
func (s *Service) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Welcome to Sanctra API (lightweight simulation only)",
		"endpoints": []string{"/health", "/sites", "/sites-by-country", "/site-info?site=...", "/generate-ir"},
		"note":      "POST /generate-ir returns compact JSON acoustic analytics (no audio).",
	})
}

// Health is the liveness probe.
func (s *Service) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListSites returns every surveyed site name, sorted.
func (s *Service) ListSites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sites": s.Sites.Names()})
}

// SitesByCountry groups the sorted site names under their survey region.
func (s *Service) SitesByCountry(c *gin.Context) {
	c.JSON(http.StatusOK, s.Sites.ByRegion())
}

// SiteInfo returns the raw survey row for one site.
func (s *Service) SiteInfo(c *gin.Context) {
	initAPIMetrics()

	name := c.Query("site")
	if name == "" {
		apiRequests.WithLabelValues("site-info", "missing_site").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'site' query parameter", "hint": "Use /sites to list valid names"})
		return
	}
	site, ok := s.Sites.Get(name)
	if !ok {
		apiRequests.WithLabelValues("site-info", "unknown_site").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Site '%s' not found", name), "hint": "Use /sites to list valid names"})
		return
	}
	apiRequests.WithLabelValues("site-info", "ok").Inc()
	c.JSON(http.StatusOK, site)
}

// GenerateIR computes the compact acoustic fingerprint for one site. The
// response is analytics only, no audio. Band entries coerce the way the
// deployed clients rely on: floats truncate, integral strings parse.
func (s *Service) GenerateIR(c *gin.Context) {
	initAPIMetrics()

	var req fields.GenerateIRRequest
	switch bindingErr := c.ShouldBindWith(&req, binding.JSON).(type) {
	case nil:
	case *json.UnmarshalTypeError:
		if bindingErr.Field == "bands" {
			apiRequests.WithLabelValues("generate-ir", "bad_bands").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "bands must be a list of integers"})
			return
		}
		// a scalar field of the wrong JSON type fails coercion
		apiRequests.WithLabelValues("generate-ir", "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulation failed", "detail": bindingErr.Error()})
		return
	default:
		// an empty or unreadable body reads as {}
		req = fields.GenerateIRRequest{}
	}

	if req.Site == "" {
		apiRequests.WithLabelValues("generate-ir", "missing_site").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'site'"})
		return
	}
	site, ok := s.Sites.Get(req.Site)
	if !ok {
		apiRequests.WithLabelValues("generate-ir", "unknown_site").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Site '%s' not found", req.Site)})
		return
	}

	bands, ok := req.BandInts()
	if !ok {
		apiRequests.WithLabelValues("generate-ir", "bad_bands").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "bands must be a list of integers"})
		return
	}

	opts := acoustics.Options{Bands: bands, FmaxHz: acoustics.DefaultFmaxHz, TopN: acoustics.DefaultTopN}
	if req.FmaxHz != nil {
		opts.FmaxHz = *req.FmaxHz
	}
	if req.ModesTopN != nil {
		opts.TopN = *req.ModesTopN
	}

	s.countFingerprint(site.Name)
	apiRequests.WithLabelValues("generate-ir", "ok").Inc()
	c.JSON(http.StatusOK, acoustics.Compute(site, opts))
}

func (s *Service) countFingerprint(site string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Incr(site + ":fingerprints").Err(); err != nil {
		s.Logger.WithError(err).Debug("fingerprint counter skipped")
	}
}
