package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/dto"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-rate-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.RateMetrics
	// Gatherer backs /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	// Limiter throttles /api routes per client IP. Nil disables it.
	Limiter        *limiter.Limiter
	AllowedOrigins []string
	ExposeErrors   bool
	Release        bool

	Rates *handlers.RateHandler
	Pairs *handlers.PairHandler
}

func New(opts Options) (*gin.Engine, error) {
	if opts.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	requestLogger, err := middleware.RequestLogger(opts.Logger, opts.Metrics)
	if err != nil {
		return nil, fmt.Errorf("request logger: %w", err)
	}

	r := gin.New()
	r.Use(requestLogger, middleware.Recovery(), cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.OK(gin.H{"status": "ok"}, ""))
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter))
	}
	if opts.Rates != nil {
		opts.Rates.Register(api)
	}
	if opts.Pairs != nil {
		opts.Pairs.Register(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Fail("route not found"))
	})
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
