package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"fitryne/internal/infra/config"
	"fitryne/internal/infra/obs"
)

type EstimateHTTP interface {
	Compute(c *gin.Context)
	AskAI(c *gin.Context)
}

type HistoryHTTP interface {
	List(c *gin.Context)
	Export(c *gin.Context)
}

type OptionsHTTP interface {
	Get(c *gin.Context)
}

type Handlers struct {
	Estimates EstimateHTTP
	History   HistoryHTTP
	Options   OptionsHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	if obsMW.Metrics != nil {
		router.GET("/metrics", gin.WrapH(obsMW.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if h.Options != nil {
		api.GET("/calories/options", h.Options.Get)
	}
	if h.Estimates != nil {
		api.POST("/calories/estimate", h.Estimates.Compute)
		api.POST("/calories/estimate/ai", h.Estimates.AskAI)
	}
	if h.History != nil {
		trainees := api.Group("/trainees/:id")
		trainees.GET("/estimates", h.History.List)
		trainees.GET("/estimates/export", h.History.Export)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
