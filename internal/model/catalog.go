package model

import "slices"

// Well-known symbols referenced by the valuation model.
const (
	SymbolUSD          = "USD"
	SymbolOunce        = "XAUUSD"
	SymbolGold18K      = "IR_GOLD_18K"
	SymbolGoldMesghal  = "IR_GOLD_MESGHAL"
	SymbolCoinEmami    = "IR_COIN_EMAMI"
	SymbolCoinBahar    = "IR_COIN_BAHAR"
	SymbolCoinHalf     = "IR_COIN_HALF"
	SymbolCoinQuarter  = "IR_COIN_QUARTER"
	MesghalPerGram18K  = 4.6083
	DefaultSymbolEmoji = "▫️"
)

// SymbolInfo describes how a symbol is displayed.
type SymbolInfo struct {
	Symbol string
	Name   string
	Emoji  string
}

var categoryOrder = []Category{CategoryCurrency, CategoryGold, CategoryCrypto}

var catalog = map[Category][]SymbolInfo{
	CategoryGold: {
		{"IR_COIN_EMAMI", "سکه امامی", "🌕"},
		{"IR_COIN_BAHAR", "سکه بهار", "🌕"},
		{"IR_COIN_HALF", "نیم سکه", "🌕"},
		{"IR_COIN_QUARTER", "ربع سکه", "🌕"},
		{"IR_COIN_1G", "سکه گرمی", "🌕"},
		{"IR_GOLD_18K", "گرم طلا", "💫"},
		{"IR_GOLD_MELTED", "طلای آب‌شده", "🔥"},
		{"IR_GOLD_MESGHAL", "مثقال طلا", "💫"},
		{"XAUUSD", "انس طلا", "💰"},
	},
	CategoryCurrency: {
		{"USD", "دلار", "🇺🇸"},
		{"EUR", "یورو", "🇪🇺"},
		{"AED", "درهم امارات", "🇦🇪"},
		{"GBP", "پوند انگلیس", "🇬🇧"},
		{"TRY", "لیر ترکیه", "🇹🇷"},
		{"USDT_IRT", "دلار تتر", "💲"},
		{"JPY", "ین ژاپن", "🇯🇵"},
		{"CHF", "فرانک سوئیس", "🇨🇭"},
		{"AUD", "دلار استرالیا", "🇦🇺"},
		{"CAD", "دلار کانادا", "🇨🇦"},
		{"CNY", "یوان چین", "🇨🇳"},
	},
	CategoryCrypto: {
		{"BTC", "بیت‌کوین", "🟠"},
		{"ETH", "اتریوم", "💎"},
		{"BNB", "بایننس کوین", "🔶"},
		{"SOL", "سولانا", "🟣"},
		{"XRP", "ریپل", "🔵"},
		{"DOGE", "دوج‌کوین", "🐕"},
		{"ADA", "کاردانو", "🧊"},
		{"SHIB", "شیبا اینو", "🦊"},
	},
}

var reportTitles = map[ReportType]string{
	ReportCurrency: "💵 نرخ ارزها",
	ReportGold:     "🪙 نرخ طلا و سکه",
	ReportCrypto:   "📈 ارزهای دیجیتال",
	ReportBubble:   "🫧 تحلیل حباب",
}

// Categories returns the customizable categories in display order.
func Categories() []Category {
	return slices.Clone(categoryOrder)
}

// IsCategory reports whether c is a known category.
func IsCategory(c Category) bool {
	_, ok := catalog[c]
	return ok
}

// CategorySymbols returns the catalog entries of c in display order.
func CategorySymbols(c Category) []SymbolInfo {
	return slices.Clone(catalog[c])
}

// LookupSymbol returns display info for symbol within c.
// Unknown symbols fall back to the raw symbol and a neutral emoji.
func LookupSymbol(c Category, symbol string) (SymbolInfo, bool) {
	for _, info := range catalog[c] {
		if info.Symbol == symbol {
			return info, true
		}
	}
	return SymbolInfo{Symbol: symbol, Name: symbol, Emoji: DefaultSymbolEmoji}, false
}

// ReportTitle returns the display title of a report type.
func ReportTitle(r ReportType) string {
	if t, ok := reportTitles[r]; ok {
		return t
	}
	return string(r)
}
