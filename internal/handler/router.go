package handler

import (
	"context"
	"net/http"
	"time"

	"recruitment_portal/internal/logger"
	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/middleware"
	"recruitment_portal/internal/service"
	"recruitment_portal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Pinger reports database health
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps holds everything NewRouter wires together. Gatherer, Pinger
// and SubmitLimiter are optional.
type RouterDeps struct {
	AuthService        service.AuthService
	JobService         service.JobService
	ApplicationService service.ApplicationService
	JWTUtil            *utils.JWTUtil
	Metrics            metrics.Recorder
	Gatherer           prometheus.Gatherer
	Pinger             Pinger
	SubmitLimiter      *middleware.RateLimiter
	CORSOrigin         string
	MaxUploadBytes     int64
}

// NewRouter builds the gin engine with every route under /api
func NewRouter(deps RouterDeps) *gin.Engine {
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger.Get()))
	router.Use(middleware.Metrics(rec))
	router.Use(middleware.CORS(deps.CORSOrigin))
	var submitMW []gin.HandlerFunc
	if deps.MaxUploadBytes > 0 {
		// resume + photo + form fields
		maxBody := 2*deps.MaxUploadBytes + 1<<20
		router.MaxMultipartMemory = maxBody
		submitMW = append(submitMW, middleware.BodyLimit(maxBody))
	}

	jwtAuthMW := middleware.JWTAuthMiddleware(deps.JWTUtil, rec)
	adminRoleMW := middleware.AdminMiddleware(rec)
	if deps.SubmitLimiter != nil {
		submitMW = append(submitMW, deps.SubmitLimiter.Middleware())
	}

	apiGroup := router.Group("/api")
	NewAuthHandler(deps.AuthService).RegisterAuthRoutes(apiGroup, jwtAuthMW)
	NewJobHandler(deps.JobService).RegisterJobRoutes(apiGroup, jwtAuthMW, adminRoleMW)
	NewApplicationHandler(deps.ApplicationService).RegisterApplicationRoutes(apiGroup, jwtAuthMW, adminRoleMW, submitMW...)

	router.GET("/health", healthHandler(deps.Pinger))
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	return router
}

func healthHandler(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	}
}
