package service

import (
	"context"
	"errors"

	"github.com/guttosm/twpulse/internal/domain/models"
	"github.com/guttosm/twpulse/internal/storage"
)

var (
	// ErrNoSnapshot means no pipeline run has produced a snapshot yet.
	ErrNoSnapshot = errors.New("no snapshot available")
	// ErrStockNotFound means the ticker is not part of the snapshot.
	ErrStockNotFound = errors.New("stock not found")
)

// SnapshotService defines read access to the latest snapshot.
type SnapshotService interface {
	Latest(ctx context.Context) (*models.Snapshot, error)
	// Stock returns the record of ticker together with the snapshot it came from.
	Stock(ctx context.Context, ticker string) (*models.Snapshot, *models.InstrumentRecord, error)
	Ready(ctx context.Context) bool
}

type snapshotService struct {
	repo storage.SnapshotRepository
}

func NewSnapshotService(repo storage.SnapshotRepository) SnapshotService {
	return &snapshotService{repo: repo}
}

func (s *snapshotService) Latest(_ context.Context) (*models.Snapshot, error) {
	snap, err := s.repo.Latest()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

func (s *snapshotService) Stock(ctx context.Context, ticker string) (*models.Snapshot, *models.InstrumentRecord, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, nil, err
	}
	rec := snap.Stock(ticker)
	if rec == nil {
		return nil, nil, ErrStockNotFound
	}
	return snap, rec, nil
}

// Ready reports whether a readable snapshot exists.
func (s *snapshotService) Ready(ctx context.Context) bool {
	_, err := s.Latest(ctx)
	return err == nil
}
