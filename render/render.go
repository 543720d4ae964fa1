package render

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v7"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sanctra/sanctra/acoustics"
	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/apperr"
	"github.com/sanctra/sanctra/catalog"
	"github.com/sanctra/sanctra/fields"
)

// Service renders impulse responses. It is wired once in main with the
// shared catalog, cache and stores; Redis, Db and Cache may be nil and
// the render path degrades gracefully without them.
type Service struct {
	Sites         *catalog.Catalog
	Cache         *cache.Cache
	Redis         *redis.Client
	Db            *gorm.DB
	SanctraConfig fields.SanctraConfig
	Logger        *logrus.Logger
}

// Render synthesises a stereo IR for site. Pure given (site, params).
func (s *Service) Render(site catalog.Site, p Params) (Result, error) {
	fp := acoustics.Compute(site, acoustics.Options{
		FmaxHz: acoustics.DefaultFmaxHz,
		TopN:   acoustics.DefaultTopN,
	})
	left, right, err := Synthesize(fp, p)
	if err != nil {
		// synthesis only fails on unusable params
		return Result{}, apperr.Wrap(err, apperr.ErrBadRequest, "")
	}
	wavBytes, err := encodeWAV(left, right, p.SampleRate)
	if err != nil {
		return Result{}, apperr.Wrap(err, apperr.ErrInternal, "")
	}
	return Result{
		WAV:         wavBytes,
		SampleRate:  p.SampleRate,
		Channels:    2,
		Duration:    p.Duration,
		Fingerprint: fp,
	}, nil
}

// RenderCached memoizes WAV bytes per (site, rate, duration, seed) and
// keeps the per-site render counters fresh. The second return reports a
// cache hit.
func (s *Service) RenderCached(site catalog.Site, p Params) (Result, bool, error) {
	key := cacheKey(site.Name, p)
	if s.Cache != nil {
		if hit, ok := s.Cache.Get(key); ok {
			if res, ok := hit.(Result); ok {
				if renderCacheHits != nil {
					renderCacheHits.Inc()
				}
				s.countRender(site, p)
				return res, true, nil
			}
		}
	}
	res, err := s.Render(site, p)
	if err != nil {
		return Result{}, false, err
	}
	if s.Cache != nil {
		s.Cache.Set(key, res, cache.DefaultExpiration)
	}
	s.countRender(site, p)
	return res, false, nil
}

// RenderIR is POST /render-ir. It answers audio/wav, or a JSON wrapper
// with the WAV base64-encoded when ?format=json is set.
func (s *Service) RenderIR(c *gin.Context) {
	initRenderMetrics()

	var req fields.RenderIRRequest
	switch bindingErr := c.ShouldBindWith(&req, binding.JSON).(type) {
	case validator.ValidationErrors:
		var details []fields.ErrDetails
		for _, err := range bindingErr {
			details = append(details, fields.ErrorToString(err))
		}
		payload := fields.ErrorDetails{Details: details, Code: http.StatusBadRequest, Message: "Request fields validation error", Status: fields.BadRequest}
		c.JSON(http.StatusBadRequest, fields.ErrorResponse{ErrorDetails: payload})
		return
	case nil:
	default:
		// an empty or unreadable body reads as {}
		req = fields.RenderIRRequest{}
	}

	if req.Site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'site'"})
		return
	}
	site, ok := s.Sites.Get(req.Site)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Site '%s' not found", req.Site)})
		return
	}

	p := s.params(site, req)
	if p.Frames() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_s too short to render"})
		return
	}

	started := time.Now()
	res, cached, err := s.RenderCached(site, p)
	elapsed := time.Since(started)
	recordRenderMetrics(site.Name, err, len(res.WAV), elapsed)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"site":  site.Name,
			"error": err.Error(),
		}).Error("render failed")
		c.JSON(apperr.Status(err), gin.H{"error": "simulation failed", "detail": err.Error()})
		return
	}
	if !cached {
		s.logRender(c, site, p, res, elapsed)
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, gin.H{
			"site":           site.Name,
			"sample_rate_hz": res.SampleRate,
			"duration_s":     res.Duration,
			"channels":       res.Channels,
			"wav_base64":     base64.StdEncoding.EncodeToString(res.WAV),
		})
		return
	}
	c.Data(http.StatusOK, "audio/wav", res.WAV)
}

// params fills the request gaps: configured sample rate, the site's tail
// reference as duration, both capped by config.
func (s *Service) params(site catalog.Site, req fields.RenderIRRequest) Params {
	rate := s.SanctraConfig.DefaultSampleRate
	if rate == 0 {
		rate = 22050
	}
	if req.SampleRateHz != nil {
		rate = *req.SampleRateHz
	}

	maxSec := s.SanctraConfig.MaxRenderSeconds
	if maxSec <= 0 {
		maxSec = 6
	}
	duration := acoustics.TailReference(site.RT60)
	if req.DurationS != nil {
		duration = *req.DurationS
	}
	if duration > maxSec {
		duration = maxSec
	}

	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	}
	return Params{SampleRate: rate, Duration: duration, Seed: seed}
}

// logRender records the render for the dashboard. Insert failures are
// logged, never surfaced to the caller.
func (s *Service) logRender(c *gin.Context, site catalog.Site, p Params, res Result, elapsed time.Duration) {
	if s.Db == nil {
		return
	}
	row := fields.Render{
		Site:       site.Name,
		Region:     site.Region,
		SampleRate: p.SampleRate,
		DurationS:  p.Duration,
		DurationMS: elapsed.Milliseconds(),
		Seed:       p.Seed,
		Bytes:      len(res.WAV),
		RequestID:  gateway.RequestIDFromCtx(c),
		ClientIP:   c.ClientIP(),
	}
	if err := s.Db.Create(&row).Error; err != nil {
		s.Logger.WithError(err).Error("render log insert failed")
	}
}
