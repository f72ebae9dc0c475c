package calculator

import (
	"errors"
	"math"

	"MarketCourier/internal/model"
)

// ErrBaseMissing is returned when the spot ounce or the dollar rate is unusable.
var ErrBaseMissing = errors.New("base prices for bubble calculation missing")

const (
	TroyOunceGrams = 31.1035
	CoinPurity     = 0.900
	Karat18Purity  = 0.75
)

// CoinSpec holds the fixed physical constants of a gold coin.
type CoinSpec struct {
	Symbol   string
	Grams    float64
	MintCost float64 // toman
}

var coins = []CoinSpec{
	{model.SymbolCoinEmami, 8.133, 300000},
	{model.SymbolCoinBahar, 8.133, 300000},
	{model.SymbolCoinHalf, 4.0665, 150000},
	{model.SymbolCoinQuarter, 2.03325, 100000},
}

// Coins returns the coin constants used by the valuation.
func Coins() []CoinSpec {
	out := make([]CoinSpec, len(coins))
	copy(out, coins)
	return out
}

// GlobalGramPrice converts the spot ounce (USD) to a local-currency gram price.
func GlobalGramPrice(ounceUSD, dollar float64) float64 {
	return ounceUSD * dollar / TroyOunceGrams
}

// ComputeBubbles derives intrinsic value and bubble percent for every gold
// instrument present in prices. Either base price missing fails the whole call.
func ComputeBubbles(prices model.PriceMap) (map[string]model.Bubble, error) {
	ounce, ok := prices.Price(model.SymbolOunce)
	if !ok || !usable(ounce) {
		return nil, ErrBaseMissing
	}
	dollar, ok := prices.Price(model.SymbolUSD)
	if !ok || !usable(dollar) {
		return nil, ErrBaseMissing
	}
	gram := GlobalGramPrice(ounce, dollar)

	bubbles := make(map[string]model.Bubble)
	for _, c := range coins {
		if market, ok := prices.Price(c.Symbol); ok {
			bubbles[c.Symbol] = newBubble(market, gram*c.Grams*CoinPurity+c.MintCost)
		}
	}
	if market, ok := prices.Price(model.SymbolGold18K); ok {
		bubbles[model.SymbolGold18K] = newBubble(market, gram*Karat18Purity)
	}
	if market, ok := prices.Price(model.SymbolGoldMesghal); ok {
		bubbles[model.SymbolGoldMesghal] = newBubble(market, gram*Karat18Purity*model.MesghalPerGram18K)
	}
	return bubbles, nil
}

func newBubble(market, intrinsic float64) model.Bubble {
	return model.Bubble{
		Market:    market,
		Intrinsic: intrinsic,
		Percent:   (market - intrinsic) / intrinsic * 100,
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
