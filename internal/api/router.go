package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/twpulse/internal/middleware"
)

// DefaultRequestTimeout bounds a request when the caller passes zero.
const DefaultRequestTimeout = 10 * time.Second

// NewRouter creates a Gin engine with the snapshot routes.
//
// Middlewares: RequestID, RequestLogger, RecoveryMiddleware, ErrorHandler,
// RateLimiter, then a per-request timeout of requestTimeout. Swagger UI is served at
// /swagger/*any. Health probes are registered by app.InitializeApp.
func NewRouter(handler *Handler, requestTimeout time.Duration) *gin.Engine {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
	)

	// ─── Timeout ──────────────────────────────────
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/snapshot", handler.GetSnapshot)
		v1.GET("/stocks/:ticker", handler.GetStock)
	}

	return router
}
