// Package report turns price maps and subscriber profiles into Telegram HTML text.
package report

import (
	"fmt"
	"slices"
	"strings"

	"MarketCourier/internal/calculator"
	"MarketCourier/internal/model"
	"MarketCourier/internal/strategy"
)

const (
	// NothingSelected replaces a category report that matched no live symbol.
	NothingSelected = "موردی برای نمایش انتخاب نشده است. لطفاً از منوی «تنظیمات»، آیتم‌های دلخواه خود را برای این بخش فعال کنید."
	// BubbleUnavailable replaces a bubble report when valuation is impossible.
	BubbleUnavailable = "❌ <b>خطا در تحلیل:</b> داده‌های ضروری برای محاسبه دریافت نشد."

	disclaimer = "\n\n⚠️ <b>سلب مسئولیت:</b>\n<i>این تحلیل یک پیشنهاد مالی یا سرمایه‌گذاری نیست و صرفاً بر اساس داده‌های لحظه‌ای و فرمول‌های ریاضی ارائه شده است. مسئولیت هرگونه معامله بر عهده کاربر می‌باشد.</i>"
	separator  = "===================="
)

var categoryEmoji = map[model.Category]string{
	model.CategoryCurrency: "💵",
	model.CategoryGold:     "🪙",
	model.CategoryCrypto:   "📈",
}

// bubbleOrder is the display order of the bubble report.
var bubbleOrder = []string{
	model.SymbolCoinEmami,
	model.SymbolCoinBahar,
	model.SymbolCoinHalf,
	model.SymbolCoinQuarter,
	model.SymbolGoldMesghal,
	model.SymbolGold18K,
	model.SymbolOunce,
}

// CategoryReport lists the subscriber's selected symbols of one category
// that are present in live, each with its move against snap.
func CategoryReport(c model.Category, p model.Profile, live, snap model.PriceMap) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>نرخ لحظه‌ای %s</b>\n\n", categoryEmoji[c], title(string(c)))

	found := 0
	for _, symbol := range p.Symbols(c) {
		price, ok := live.Price(symbol)
		if !ok {
			continue
		}
		found++
		info, _ := model.LookupSymbol(c, symbol)
		prev, hasPrev := snap.Price(symbol)
		change := changeIndicator(price, prev, hasPrev)

		if c == model.CategoryCrypto {
			fmt.Fprintf(&b, "%s <b>%s</b> (%s)\n<code>$%s</code>%s\n\n", info.Emoji, info.Name, symbol, cryptoPrice(price), change)
		} else {
			fmt.Fprintf(&b, "%s <b>%s:</b> <code>%s تومان</code>%s\n", info.Emoji, info.Name, toman(price), change)
		}
	}
	if found == 0 {
		return NothingSelected
	}
	return b.String()
}

// BubbleReport renders market prices, intrinsic values, bubble percentages
// and the emami-driven guidance line.
func BubbleReport(live model.PriceMap) string {
	bubbles, err := calculator.ComputeBubbles(live)
	if err != nil || len(bubbles) == 0 {
		return BubbleUnavailable
	}

	var b strings.Builder
	b.WriteString("\n\n🪙 <b>قیمت لحظه‌ای بازار</b>\n#قیمت_بازار\n")
	for _, symbol := range bubbleOrder {
		price, ok := live.Price(symbol)
		if !ok {
			continue
		}
		info, _ := model.LookupSymbol(model.CategoryGold, symbol)
		if symbol == model.SymbolOunce {
			fmt.Fprintf(&b, "%s <b>%s:</b> <code>%s$</code>\n", info.Emoji, info.Name, twoDecimals(price))
			continue
		}
		fmt.Fprintf(&b, "%s <b>%s:</b> <code>%s تومان</code>\n", info.Emoji, info.Name, toman(price))
	}

	usd, _ := live.Price(model.SymbolUSD)
	fmt.Fprintf(&b, "\n\n💎 <b>ارزش ذاتی و درصد حباب</b>\n با احتساب دلار <code>%s</code> تومان\n", toman(usd))
	for _, symbol := range bubbleOrder {
		bub, ok := bubbles[symbol]
		if !ok {
			continue
		}
		info, _ := model.LookupSymbol(model.CategoryGold, symbol)
		fmt.Fprintf(&b, "%s <b>%s:</b> <code>%s</code> - (%+.2f%%)\n", info.Emoji, info.Name, toman(bub.Intrinsic), bub.Percent)
	}

	if emami, ok := bubbles[model.SymbolCoinEmami]; ok {
		g := strategy.Evaluate(emami.Percent)
		b.WriteString("\n----------------------------------------\n💡 <b>تحلیل استراتژیک (بر اساس حباب سکه امامی):</b>\n")
		b.WriteString(g.Text)
	}
	b.WriteString(disclaimer)
	return b.String()
}

// AggregatedReport joins the requested report bodies in canonical order
// under a single header. Unknown report types are ignored.
func AggregatedReport(types []string, p model.Profile, live, snap model.PriceMap, header string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 <b>گزارش خودکار شما - %s</b>\n%s\n", header, separator)
	for _, rt := range model.ReportTypes() {
		if !slices.Contains(types, string(rt)) {
			continue
		}
		if rt == model.ReportBubble {
			b.WriteString(BubbleReport(live))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(CategoryReport(model.Category(rt), p, live, snap))
		b.WriteString("\n")
	}
	return b.String()
}

// WithHeader prefixes an on-demand report with the date line.
func WithHeader(header, body string) string {
	return header + "\n\n" + body
}
