package collector

import (
	"context"

	"MarketCourier/internal/model"
)

// Fetcher defines the interface for fetching the raw price feed.
type Fetcher interface {
	FetchPrices(ctx context.Context) ([]model.PriceRecord, error)
	Name() string
}
