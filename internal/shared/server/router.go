package server

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"hr-analytics/internal/shared/config"
	"hr-analytics/internal/shared/metrics"
	"hr-analytics/internal/shared/server/middleware"
	"hr-analytics/internal/shared/server/respond"
)

// Routes is any handler that attaches its endpoints to the engine.
type Routes interface {
	RegisterRoutes(r gin.IRoutes)
}

// RouterDeps carries everything the web app mounts.
type RouterDeps struct {
	Config    config.Config
	Templates *template.Template
	// Session loads the browser session before any handler runs.
	Session gin.HandlerFunc
	Limiter *middleware.RateLimiter
	Routes  []Routes
}

const predictGroup = "PREDICT"

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if deps.Templates != nil {
		r.SetHTMLTemplate(deps.Templates)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.GinMiddleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if deps.Session != nil {
		r.Use(deps.Session)
	}
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		GroupFor: func(c *gin.Context) string {
			if c.FullPath() == "/predict" {
				return predictGroup
			}
			return ""
		},
		Limiter: deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			predictGroup: {Rate: deps.Config.Predict.RateLimitRPS, Burst: deps.Config.Predict.RateLimitBurst},
		},
	}))

	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())
	for _, routes := range deps.Routes {
		routes.RegisterRoutes(r)
	}
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Not found")
	})

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
