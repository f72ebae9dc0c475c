package calculator

import (
	"math"
	"reflect"
	"testing"

	"MarketCourier/internal/model"
)

func priceMap(kv map[string]float64) model.PriceMap {
	m := make(model.PriceMap, len(kv))
	for s, p := range kv {
		m[s] = model.PriceRecord{Symbol: s, Price: p}
	}
	return m
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func TestComputeBubbles_AllInstruments(t *testing.T) {
	prices := priceMap(map[string]float64{
		"XAUUSD":          2400,
		"USD":             58000,
		"IR_COIN_EMAMI":   45000000,
		"IR_COIN_BAHAR":   44000000,
		"IR_COIN_HALF":    23000000,
		"IR_COIN_QUARTER": 13000000,
		"IR_GOLD_18K":     3500000,
		"IR_GOLD_MESGHAL": 3500000 * 4.6083,
	})
	bubbles, err := ComputeBubbles(prices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bubbles) != 6 {
		t.Fatalf("expected 6 bubbles, got %d", len(bubbles))
	}

	gram := 2400 * 58000 / 31.1035
	emami := bubbles["IR_COIN_EMAMI"]
	wantIntrinsic := gram*8.133*0.9 + 300000
	if !closeTo(emami.Intrinsic, wantIntrinsic) {
		t.Errorf("emami intrinsic: expected %.4f, got %.4f", wantIntrinsic, emami.Intrinsic)
	}
	wantPercent := (45000000 - wantIntrinsic) / wantIntrinsic * 100
	if !closeTo(emami.Percent, wantPercent) {
		t.Errorf("emami percent: expected %.6f, got %.6f", wantPercent, emami.Percent)
	}

	quarter := bubbles["IR_COIN_QUARTER"]
	if !closeTo(quarter.Intrinsic, gram*2.03325*0.9+100000) {
		t.Errorf("quarter intrinsic mismatch: %.4f", quarter.Intrinsic)
	}
	k18 := bubbles["IR_GOLD_18K"]
	if !closeTo(k18.Intrinsic, gram*0.75) {
		t.Errorf("18k intrinsic mismatch: %.4f", k18.Intrinsic)
	}
	mesghal := bubbles["IR_GOLD_MESGHAL"]
	if !closeTo(mesghal.Intrinsic, gram*0.75*4.6083) {
		t.Errorf("mesghal intrinsic mismatch: %.4f", mesghal.Intrinsic)
	}
	if _, ok := bubbles["XAUUSD"]; ok {
		t.Error("spot ounce must not carry a bubble")
	}
}

func TestComputeBubbles_MissingBase(t *testing.T) {
	tests := []struct {
		name   string
		prices map[string]float64
	}{
		{"no ounce", map[string]float64{"USD": 58000, "IR_COIN_EMAMI": 1}},
		{"no dollar", map[string]float64{"XAUUSD": 2400, "IR_COIN_EMAMI": 1}},
		{"zero dollar", map[string]float64{"XAUUSD": 2400, "USD": 0, "IR_COIN_EMAMI": 1}},
		{"negative ounce", map[string]float64{"XAUUSD": -1, "USD": 58000}},
		{"empty", map[string]float64{}},
	}
	for _, tt := range tests {
		bubbles, err := ComputeBubbles(priceMap(tt.prices))
		if err != ErrBaseMissing {
			t.Errorf("%s: expected ErrBaseMissing, got %v", tt.name, err)
		}
		if bubbles != nil {
			t.Errorf("%s: expected nil result, got %v", tt.name, bubbles)
		}
	}
}

func TestComputeBubbles_OmitsAbsentInstruments(t *testing.T) {
	bubbles, err := ComputeBubbles(priceMap(map[string]float64{
		"XAUUSD":      2400,
		"USD":         58000,
		"IR_GOLD_18K": 3500000,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bubbles) != 1 {
		t.Fatalf("expected only 18k, got %v", bubbles)
	}
	if _, ok := bubbles["IR_GOLD_18K"]; !ok {
		t.Error("expected 18k bubble")
	}
}

func TestComputeBubbles_Deterministic(t *testing.T) {
	prices := priceMap(map[string]float64{
		"XAUUSD":        2375.5,
		"USD":           61250,
		"IR_COIN_EMAMI": 52000000,
		"IR_COIN_HALF":  27000000,
		"IR_GOLD_18K":   4100000,
	})
	a, errA := ComputeBubbles(prices)
	b, errB := ComputeBubbles(prices)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical results, got %v and %v", a, b)
	}
}
