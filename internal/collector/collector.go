package collector

import (
	"context"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"MarketCourier/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Records []model.PriceRecord
	Err     error
	Delay   time.Duration
	calls   atomic.Int32
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrices(ctx context.Context) ([]model.PriceRecord, error) {
	m.calls.Add(1)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.PriceRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

// Calls returns how many times the feed was hit.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// Collector turns raw feed output into a normalized price map. Concurrent
// callers share a single in-flight fetch.
type Collector struct {
	Fetcher Fetcher
	Timeout time.Duration
	group   singleflight.Group
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Collector{Fetcher: fetcher, Timeout: timeout}
}

// Collect fetches the feed once and returns a private copy of the normalized map.
func (c *Collector) Collect(ctx context.Context) (model.PriceMap, error) {
	ch := c.group.DoChan("prices", func() (interface{}, error) {
		// The shared fetch must not die with whichever caller started it.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.Timeout)
		defer cancel()
		records, err := c.Fetcher.FetchPrices(fctx)
		if err != nil {
			return nil, err
		}
		prices := Normalize(records)
		if len(prices) == 0 {
			return nil, ErrEmptyFeed
		}
		return prices, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("collect from %s: %w", c.Fetcher.Name(), res.Err)
		}
		return maps.Clone(res.Val.(model.PriceMap)), nil
	}
}

// Normalize merges records into one namespace (last write wins) and
// synthesizes the mesghal unit from the 18K gram price.
func Normalize(records []model.PriceRecord) model.PriceMap {
	prices := make(model.PriceMap, len(records)+1)
	for _, r := range records {
		prices[r.Symbol] = r
	}
	if gram, ok := prices.Price(model.SymbolGold18K); ok {
		prices[model.SymbolGoldMesghal] = model.PriceRecord{
			Symbol: model.SymbolGoldMesghal,
			Price:  gram * model.MesghalPerGram18K,
			Unit:   prices[model.SymbolGold18K].Unit,
		}
	}
	return prices
}

// DemoRecords is a fixed market used when the feed runs in mock mode.
func DemoRecords() []model.PriceRecord {
	return []model.PriceRecord{
		{Symbol: "XAUUSD", Price: 2650.4, Unit: "دلار"},
		{Symbol: "IR_GOLD_18K", Price: 7_350_000, Unit: "تومان"},
		{Symbol: "IR_COIN_EMAMI", Price: 72_500_000, Unit: "تومان"},
		{Symbol: "IR_COIN_BAHAR", Price: 68_900_000, Unit: "تومان"},
		{Symbol: "IR_COIN_HALF", Price: 38_200_000, Unit: "تومان"},
		{Symbol: "IR_COIN_QUARTER", Price: 21_400_000, Unit: "تومان"},
		{Symbol: "USD", Price: 104_500, Unit: "تومان"},
		{Symbol: "EUR", Price: 121_300, Unit: "تومان"},
		{Symbol: "AED", Price: 28_450, Unit: "تومان"},
		{Symbol: "USDT_IRT", Price: 105_100, Unit: "تومان"},
		{Symbol: "BTC", Price: 67_250.12, Unit: "دلار"},
		{Symbol: "ETH", Price: 2_480.55, Unit: "دلار"},
		{Symbol: "SHIB", Price: 0.00001712, Unit: "دلار"},
	}
}
