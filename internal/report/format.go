package report

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"MarketCourier/internal/calculator"
)

var printer = message.NewPrinter(language.English)

// title upper-cases a category key for display. Casers are stateful.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// toman renders an integer toman amount with thousands grouping.
// Fractions are truncated.
func toman(price float64) string {
	return printer.Sprintf("%d", int64(price))
}

func twoDecimals(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// cryptoPrice uses 8 decimals for sub-cent coins.
func cryptoPrice(price float64) string {
	if price < 0.01 {
		return printer.Sprintf("%.8f", price)
	}
	return twoDecimals(price)
}

// changeIndicator compares current against the snapshot price. It is empty
// when there is nothing to compare against.
func changeIndicator(current float64, previous float64, ok bool) string {
	if !ok || previous == 0 {
		return ""
	}
	pct, err := calculator.PercentChange(current, previous)
	if err != nil {
		return ""
	}
	marker := "➖"
	switch calculator.Classify(pct) {
	case calculator.DirectionUp:
		marker = "▲"
	case calculator.DirectionDown:
		marker = "▼"
	}
	return fmt.Sprintf(" (%s %+.2f%%)", marker, pct)
}
