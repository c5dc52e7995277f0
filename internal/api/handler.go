package api

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/twpulse/internal/domain/dto"
	"github.com/guttosm/twpulse/internal/middleware"
	"github.com/guttosm/twpulse/internal/service"
)

var tickerPattern = regexp.MustCompile(`^[0-9A-Z]{1,8}$`)

// Handler serves the stored snapshot read-only.
type Handler struct {
	svc service.SnapshotService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SnapshotService) *Handler {
	return &Handler{svc: svc}
}

// GetSnapshot handles GET /api/v1/snapshot.
//
// GetSnapshot godoc
// @Summary      Latest snapshot
// @Description  Returns the snapshot written by the most recent pipeline run
// @Tags         snapshot
// @Produce      json
// @Success      200  {object}  models.Snapshot    "Success"
// @Failure      404  {object}  dto.ErrorResponse  "No snapshot yet"
// @Failure      500  {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/snapshot [get]
func (h *Handler) GetSnapshot(c *gin.Context) {
	snap, err := h.svc.Latest(c.Request.Context())
	if errors.Is(err, service.ErrNoSnapshot) {
		middleware.AbortWithError(c, http.StatusNotFound, "no snapshot available", nil)
		return
	}
	if err != nil {
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to read snapshot", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetStock handles GET /api/v1/stocks/{ticker}.
//
// GetStock godoc
// @Summary      One tracked stock
// @Description  Returns price, foreign net flow and classified news of one ticker from the latest snapshot
// @Tags         snapshot
// @Produce      json
// @Param        ticker  path      string  true  "Stock ticker" example(2330)
// @Success      200     {object}  dto.StockResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Not Found"
// @Failure      500     {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/stocks/{ticker} [get]
func (h *Handler) GetStock(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	if !tickerPattern.MatchString(ticker) {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid ticker", nil)
		return
	}

	snap, rec, err := h.svc.Stock(c.Request.Context(), ticker)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewStockResponse(snap, *rec))
	case errors.Is(err, service.ErrNoSnapshot):
		middleware.AbortWithError(c, http.StatusNotFound, "no snapshot available", nil)
	case errors.Is(err, service.ErrStockNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "stock not found", nil)
	default:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to read snapshot", err)
	}
}
