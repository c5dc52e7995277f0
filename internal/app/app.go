package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/twpulse/config"
	"github.com/guttosm/twpulse/internal/api"
	"github.com/guttosm/twpulse/internal/service"
)

// InitializeApp sets up the read-only API over the stored snapshot and
// returns the router, a cleanup function for graceful shutdown and any
// initialization error.
//
// Responsibilities:
//   - Opens the snapshot repository at config.AppConfig.Output.Path.
//   - Builds the service and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes (ready once a snapshot exists).
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	repo := repoCtor(cfg.Output.Path)
	svc := service.NewSnapshotService(repo)

	handler := api.NewHandler(svc)
	router := api.NewRouter(handler, cfg.Server.RequestTimeout)

	healthHandler := api.NewHealthHandler(func() bool {
		return svc.Ready(context.Background())
	})
	healthHandler.Register(router)

	// nothing to release: the repository holds no open handles
	cleanup := func() {}

	return router, cleanup, nil
}
