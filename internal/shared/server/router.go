package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/runlog"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/web"
)

const analyzeRateGroup = "ANALYZE"

// Deps are the handlers mounted by NewRouter. Nil handlers are skipped.
type Deps struct {
	Analyses *analyses.Handler
	Runs     *runlog.Handler
	Web      *web.Handler
	Health   *health.Service
	Limiter  *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 2*cfg.MaxUploadBytes + (1 << 20)
	// Forwarded headers are only honoured from configured proxies; the rate limiter keys on ClientIP.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		telemetry.Error("server.trusted_proxies_invalid", map[string]any{"error": err.Error()})
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateGroup,
			Limiter:  deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				analyzeRateGroup: middleware.PerMinute(cfg.AnalyzeRatePerMinute, cfg.AnalyzeBurst),
			},
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(api)
	}
	if deps.Runs != nil {
		deps.Runs.RegisterRoutes(api)
	}

	r.GET("/metrics", metrics.Handler())

	if deps.Web != nil {
		r.SetHTMLTemplate(web.Templates())
		deps.Web.RegisterRoutes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})

	return r
}

func rateGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/api/v1/analyses", "/report":
		return analyzeRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":" + config.DefaultPort
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
