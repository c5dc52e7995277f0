package dto

import "github.com/guttosm/twpulse/internal/domain/models"

// StockResponse represents the JSON structure returned by the
// GET /api/v1/stocks/{ticker} endpoint: one instrument record together with
// the trading days it refers to.
type StockResponse struct {
	RunID            string                  `json:"run_id" example:"6f1c2a7e-4b1d-4f7e-9a55-2f1f0f3c9d10"`
	GeneratedAt      string                  `json:"generated_at" example:"2024-01-05T18:30:00+08:00"`
	LatestTradingDay string                  `json:"latest_trading_day" example:"2024-01-05"`
	PrevTradingDay   string                  `json:"prev_trading_day" example:"2024-01-04"`
	Stock            models.InstrumentRecord `json:"stock"`
}

// NewStockResponse copies the snapshot header around rec.
func NewStockResponse(snap *models.Snapshot, rec models.InstrumentRecord) StockResponse {
	return StockResponse{
		RunID:            snap.RunID,
		GeneratedAt:      snap.GeneratedAt,
		LatestTradingDay: snap.LatestTradingDay,
		PrevTradingDay:   snap.PrevTradingDay,
		Stock:            rec,
	}
}
