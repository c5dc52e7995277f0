package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides liveness and readiness endpoints.
//
//   - /healthz: liveness, always 200.
//   - /readyz: 200 once ready() reports true (a snapshot exists), 503 otherwise.
type HealthHandler struct {
	ready func() bool
}

// NewHealthHandler constructs a HealthHandler. A nil ready func means always ready.
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// Register mounts the probes on r.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready once a snapshot has been written
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]string
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		if h.ready != nil && !h.ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting for snapshot"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
