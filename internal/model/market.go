package model

import "time"

// PriceRecord is one traded instrument as normalized from the feed.
type PriceRecord struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Price  float64 `json:"price"`
	Unit   string  `json:"unit,omitempty"`
}

// PriceMap maps symbol to its record.
type PriceMap map[string]PriceRecord

// Price returns the price for symbol and whether it is present.
func (m PriceMap) Price(symbol string) (float64, bool) {
	r, ok := m[symbol]
	if !ok {
		return 0, false
	}
	return r.Price, true
}

// Has reports whether symbol is present.
func (m PriceMap) Has(symbol string) bool {
	_, ok := m[symbol]
	return ok
}

// Snapshot is the last captured price map, used only as a comparison baseline.
type Snapshot struct {
	CapturedAt time.Time `json:"timestamp"`
	Prices     PriceMap  `json:"prices"`
}

// Bubble holds one instrument's market vs. intrinsic valuation.
type Bubble struct {
	Market    float64
	Intrinsic float64
	Percent   float64 // (market - intrinsic) / intrinsic * 100
}
