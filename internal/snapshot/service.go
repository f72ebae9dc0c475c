package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"MarketCourier/internal/model"
)

// ErrEmptyRefresh is returned when the source yields no prices; the stored
// baseline is kept.
var ErrEmptyRefresh = errors.New("refresh snapshot: no prices")

// PriceSource yields a normalized live price map.
type PriceSource interface {
	Collect(ctx context.Context) (model.PriceMap, error)
}

// Service refreshes and reads the comparison baseline.
type Service struct {
	Source PriceSource
	Store  Store
	Now    func() time.Time
}

func NewService(src PriceSource, store Store) *Service {
	return &Service{Source: src, Store: store, Now: time.Now}
}

// Refresh captures a new snapshot. On feed failure the stored snapshot is
// left untouched.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	prices, err := s.Source.Collect(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh snapshot: %w", err)
	}
	if len(prices) == 0 {
		return 0, ErrEmptyRefresh
	}
	snap := &model.Snapshot{CapturedAt: s.Now(), Prices: prices}
	if err := s.Store.Save(ctx, snap); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return len(prices), nil
}

// Read returns the baseline prices. Missing or unreadable snapshots yield an
// empty map.
func (s *Service) Read(ctx context.Context) model.PriceMap {
	snap, err := s.Store.Load(ctx)
	if err != nil {
		log.Printf("[WARN] snapshot unreadable, comparing against nothing: %v", err)
		return model.PriceMap{}
	}
	if snap == nil || snap.Prices == nil {
		return model.PriceMap{}
	}
	return snap.Prices
}
