package main

import (
	_ "embed"
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/iter"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	cache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"gopkg.in/yaml.v3"

	"github.com/sanctra/sanctra/api"
	gateway "github.com/sanctra/sanctra/apigateway"
	"github.com/sanctra/sanctra/catalog"
	"github.com/sanctra/sanctra/dashboard"
	"github.com/sanctra/sanctra/fields"
	"github.com/sanctra/sanctra/render"
	"github.com/sanctra/sanctra/utils"
)

//go:embed config.yaml
var configFile []byte

func isTestRun() bool {
	return strings.HasSuffix(os.Args[0], ".test")
}

// parseConfig loads the embedded config.yaml, an on-disk override named by
// SANCTRA_CONFIG when present, then the environment on top of both.
func parseConfig(data *fields.SanctraConfig) error {
	raw := configFile
	if path := os.Getenv("SANCTRA_CONFIG"); path != "" {
		onDisk, err := os.ReadFile(path)
		if err != nil {
			logrusLogger.Printf("config override unreadable: %v", err)
		} else {
			raw = onDisk
		}
	}
	if err := yaml.Unmarshal(raw, data); err != nil {
		logrusLogger.Printf("Error in parsing config files: %v", err)
		return err
	}
	overrideFromEnv(data)
	return nil
}

func overrideFromEnv(data *fields.SanctraConfig) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			data.Port = p
		}
	}
	if path := os.Getenv("SANCTRA_DB"); path != "" {
		data.DatabasePath = path
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		data.RedisHost = host
	}
	if key := os.Getenv("SANCTRA_JWT_KEY"); key != "" {
		data.JWTKey = key
	}
	if os.Getenv("SANCTRA_DEBUG") != "" {
		data.IsDebug = true
	}
}

func pageInc(i int) int { return i + 1 }

func dashboardRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()
	r.AddFromFilesFuncs("dashboard",
		template.FuncMap{"N": iter.N, "time": dashboard.TimeFormatter, "inc": pageInc},
		"./dashboard/template/index.html")
	return r
}

func adminAuth() gin.HandlerFunc {
	return gateway.RequireAdmin(gateway.AdminAuthConfig{
		Key:          sanctraConfig.AdminKey,
		User:         sanctraConfig.AdminUser,
		PasswordHash: sanctraConfig.AdminPasswordHash,
		Debug:        sanctraConfig.IsDebug,
	})
}

// GetMainEngine function responsible for getting all of our routes to be delivered for gin
func GetMainEngine() *gin.Engine {
	route := gin.Default()
	instrument := gateway.Instrumentation()
	route.Use(instrument)
	route.Use(gateway.RequestID())
	route.Use(gateway.RequestLogger(logrusLogger, logSampling))
	route.HandleMethodNotAllowed = true
	route.Use(gateway.OptionsMiddleware)

	prom := ginprometheus.NewPrometheus("gin")
	route.Use(prom.HandlerFunc())

	route.HTMLRender = dashboardRenderer()
	route.Static("/dashboard/assets", "./dashboard/template")

	route.GET("/", apiService.Home)
	route.GET("/health", apiService.Health)
	route.GET("/sites", apiService.ListSites)
	route.GET("/sites-by-country", apiService.SitesByCountry)
	route.GET("/site-info", apiService.SiteInfo)
	route.POST("/generate-ir", apiService.GenerateIR)
	route.POST("/render-ir", renderService.RenderIR)

	route.GET("/metrics", gin.WrapH(promhttp.Handler()))

	dashboardGroup := route.Group("/dashboard")
	{
		dashboardGroup.POST("/login", dashService.LoginHandler)
		dashboardGroup.GET("/", adminAuth(), dashService.BrowserDashboard)
		dashboardGroup.Use(auth.AuthMiddleware())
		dashboardGroup.GET("/renders", dashService.RendersLog)
		dashboardGroup.GET("/renders/:id", dashService.RenderByID)
		dashboardGroup.GET("/count", dashService.RendersCount)
		dashboardGroup.GET("/sites/top", dashService.TopSites)
	}
	return route
}

func init() {
	var err error

	logrusLogger.Level = logrus.DebugLevel
	logrusLogger.SetReportCaller(true)

	if err = parseConfig(&sanctraConfig); err != nil {
		logrusLogger.Printf("error in parsing file: %v", err)
	}
	sanctraConfig.Defaults()
	configureLogger(sanctraConfig)

	dbpath := sanctraConfig.DatabasePath
	if isTestRun() {
		if tmp, err := os.CreateTemp("", "sanctra-test-*.db"); err == nil {
			dbpath = tmp.Name()
			_ = tmp.Close()
		}
	}
	database, err = utils.Database(dbpath)
	if err != nil {
		logrusLogger.Fatalf("error in connecting to db: %v", err)
	}
	database.AutoMigrate(&fields.Render{})

	sitesCatalog, err = catalog.Load()
	if err != nil {
		logrusLogger.Fatalf("error in loading the site survey: %v", err)
	}

	redisClient = utils.GetRedis(sanctraConfig.RedisHost)
	renderCache = cache.New(time.Duration(sanctraConfig.RenderCacheTTLMin)*time.Minute, 10*time.Minute)

	auth = gateway.JWTAuth{SanctraConfig: sanctraConfig}
	auth.Init()
	binding.Validator = new(fields.DefaultValidator)

	apiService = api.Service{Sites: sitesCatalog, Redis: redisClient, SanctraConfig: sanctraConfig, Logger: logrusLogger}
	renderService = render.Service{Sites: sitesCatalog, Cache: renderCache, Redis: redisClient, Db: database, SanctraConfig: sanctraConfig, Logger: logrusLogger}
	dashService = dashboard.Service{Redis: redisClient, Db: database, SanctraConfig: sanctraConfig, Logger: logrusLogger, Auth: &auth}
}
