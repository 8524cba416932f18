package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/use-agent/channelscope/api/handler"
	"github.com/use-agent/channelscope/api/middleware"
	"github.com/use-agent/channelscope/config"
)

// Service is what the router needs from the analyzer.
type Service interface {
	handler.ChannelAnalyzer
	handler.StatsProvider
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	Analyze: BindAnalyzeRequest → RateLimit
//
// Invalid input is rejected with 400 before the rate limiter is consulted.
// Health sits outside the rate limiter so monitoring checks always work.
func NewRouter(svc Service, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(corsConfig(cfg.CORS)))

	api := r.Group("/api")
	api.GET("/health", handler.Health(svc, startTime))
	api.GET("/analyze",
		handler.BindAnalyzeRequest(),
		middleware.RateLimit(cfg.RateLimit),
		handler.Analyze(svc),
	)

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "OPTIONS"}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
	}
	return cc
}
