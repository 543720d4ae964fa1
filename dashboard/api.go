// Package dashboard exposes the render log to operators: JSON endpoints
// for the dashboard SPA bits and a server-rendered HTML table view.
package dashboard

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v7"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/apperr"
	"github.com/sanctra/sanctra/fields"
)

const pageSize = 50

// Service serves the dashboard routes. Redis may be nil; the sites/top
// endpoint just comes back empty without it.
type Service struct {
	Redis         *redis.Client
	Db            *gorm.DB
	SanctraConfig fields.SanctraConfig
	Logger        *logrus.Logger
	Auth          *gateway.JWTAuth
}

// TimeFormatter renders row timestamps for the dashboard template.
func TimeFormatter(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func (s Service) calculateOffset(page, pageSize int) uint {
	if page <= 1 {
		return 0
	}
	return uint((page - 1) * pageSize)
}

// respondError translates typed errors into their HTTP form.
func respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.Status(err), apperr.Payload(err))
}

// RendersLog is GET /dashboard/renders. Newest first, fifty per page.
func (s *Service) RendersLog(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var rows []fields.Render
	err := s.Db.Order("id desc").Offset(int(s.calculateOffset(page, pageSize))).Limit(pageSize).Find(&rows).Error
	if err != nil {
		s.Logger.WithError(err).Error("renders query failed")
		respondError(c, apperr.Wrap(err, apperr.ErrDatabase, "db error"))
		return
	}

	paging := gin.H{"previous": page - 1, "next": page + 1}
	if page == 1 {
		paging["previous"] = 1
	}
	c.JSON(http.StatusOK, gin.H{"result": rows, "paging": paging})
}

// RenderByID is GET /dashboard/renders/:id.
func (s *Service) RenderByID(c *gin.Context) {
	var row fields.Render
	err := s.Db.First(&row, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperr.Newf(apperr.ErrNotFound, "render not found"))
		return
	}
	if err != nil {
		s.Logger.WithError(err).Error("render lookup failed")
		respondError(c, apperr.Wrap(err, apperr.ErrDatabase, "db error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": row})
}

// RendersCount is GET /dashboard/count.
func (s *Service) RendersCount(c *gin.Context) {
	var count int64
	if err := s.Db.Model(&fields.Render{}).Count(&count).Error; err != nil {
		s.Logger.WithError(err).Error("renders count failed")
		respondError(c, apperr.Wrap(err, apperr.ErrDatabase, "db error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": gin.H{"count": count}})
}

// TopSites is GET /dashboard/sites/top: the most rendered sites by the
// Redis counters. Without Redis the list is empty, never an error.
func (s *Service) TopSites(c *gin.Context) {
	out := []gin.H{}
	if s.Redis != nil {
		entries, err := s.Redis.ZRevRangeWithScores("sites:renders", 0, 19).Result()
		if err != nil && err != redis.Nil {
			s.Logger.WithError(err).Warn("top sites unavailable")
		}
		for _, z := range entries {
			name, _ := z.Member.(string)
			entry := gin.H{"site": name, "renders": int64(z.Score)}
			if raw, err := s.Redis.HGet("renders:last", name).Result(); err == nil {
				var last fields.LastRender
				if last.UnmarshalBinary([]byte(raw)) == nil {
					entry["last"] = last
				}
			}
			out = append(out, entry)
		}
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}

// BrowserDashboard is GET /dashboard/, the HTML table of recent renders.
func (s *Service) BrowserDashboard(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	var rows []fields.Render
	if err := s.Db.Order("id desc").Offset(int(s.calculateOffset(page, pageSize))).Limit(pageSize).Find(&rows).Error; err != nil {
		s.Logger.WithError(err).Error("renders query failed")
		c.String(http.StatusInternalServerError, "db error")
		return
	}
	var count int64
	s.Db.Model(&fields.Render{}).Count(&count)

	pages := int((count + pageSize - 1) / pageSize)
	if pages < 1 {
		pages = 1
	}
	c.HTML(http.StatusOK, "dashboard", gin.H{
		"renders": rows,
		"count":   count,
		"page":    page,
		"pages":   pages,
	})
}
