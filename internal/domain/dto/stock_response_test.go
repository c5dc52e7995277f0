package dto

import (
	"testing"

	"github.com/guttosm/twpulse/internal/domain/models"
)

func TestNewStockResponse(t *testing.T) {
	snap := &models.Snapshot{RunID: "r", GeneratedAt: "g", LatestTradingDay: "2024-01-05", PrevTradingDay: "2024-01-04"}
	rec := models.InstrumentRecord{Ticker: "2330", Name: "台積電"}

	got := NewStockResponse(snap, rec)
	if got.RunID != "r" || got.LatestTradingDay != "2024-01-05" || got.PrevTradingDay != "2024-01-04" || got.Stock.Ticker != "2330" {
		t.Fatalf("unexpected %+v", got)
	}
}
