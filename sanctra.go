package main

import (
	"fmt"

	"github.com/go-redis/redis/v7"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sanctra/sanctra/api"
	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/catalog"
	"github.com/sanctra/sanctra/dashboard"
	"github.com/sanctra/sanctra/fields"
	"github.com/sanctra/sanctra/render"
)

var sanctraConfig fields.SanctraConfig
var logrusLogger = logrus.New()
var database *gorm.DB
var sitesCatalog *catalog.Catalog
var redisClient *redis.Client
var renderCache *cache.Cache
var auth gateway.JWTAuth
var logSampling gateway.LogSamplingConfig
var apiService api.Service
var renderService render.Service
var dashService dashboard.Service

func main() {
	if sanctraConfig.Port == 0 {
		sanctraConfig.Port = 10000
	}
	logrusLogger.Fatal(GetMainEngine().Run(fmt.Sprintf(":%d", sanctraConfig.Port)))
}
