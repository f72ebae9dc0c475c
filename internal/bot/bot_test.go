package bot

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketCourier/internal/model"
	"MarketCourier/internal/prefs"
	"MarketCourier/internal/report"
)

type stubPrices struct {
	prices model.PriceMap
	err    error
}

func (s stubPrices) Collect(context.Context) (model.PriceMap, error) { return s.prices, s.err }

type stubSnapshot model.PriceMap

func (s stubSnapshot) Read(context.Context) model.PriceMap { return model.PriceMap(s) }

func newTestBot(t *testing.T, src stubPrices) *Bot {
	t.Helper()
	store, err := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)
	b := New(store, src, stubSnapshot{"USD": {Symbol: "USD", Price: 57000}}, time.UTC)
	b.Now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return b
}

func livePrices() model.PriceMap {
	return model.PriceMap{
		"USD": {Symbol: "USD", Price: 58000},
		"BTC": {Symbol: "BTC", Price: 64000},
	}
}

func TestHandle_Start(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	reply := b.Handle(context.Background(), "1", "/start")
	assert.Equal(t, welcomeText, reply.Text)
	assert.Equal(t, MainKeyboard(), reply.Keyboard)
	assert.Contains(t, b.Prefs.IDs(), "1")
}

func TestHandle_CategoryButtonUsesSnapshot(t *testing.T) {
	b := newTestBot(t, stubPrices{prices: livePrices()})

	reply := b.Handle(context.Background(), "1", model.ReportTitle(model.ReportCurrency))

	header := report.DateHeader(b.Now())
	require.True(t, strings.HasPrefix(reply.Text, header+"\n\n"), reply.Text)
	assert.Contains(t, reply.Text, "58,000 تومان</code> (▲ +1.75%)")
}

func TestHandle_SlashCommandAndBotSuffix(t *testing.T) {
	b := newTestBot(t, stubPrices{prices: livePrices()})
	reply := b.Handle(context.Background(), "1", "/crypto@MarketCourierBot")
	assert.Contains(t, reply.Text, "(BTC)")
}

func TestHandle_FeedFailure(t *testing.T) {
	b := newTestBot(t, stubPrices{err: errors.New("boom")})
	for _, text := range []string{"/bubble", model.ReportTitle(model.ReportGold)} {
		assert.Equal(t, feedErrorText, b.Handle(context.Background(), "1", text).Text)
	}
}

func TestHandle_BubbleUnavailable(t *testing.T) {
	b := newTestBot(t, stubPrices{prices: livePrices()})
	reply := b.Handle(context.Background(), "1", model.ReportTitle(model.ReportBubble))
	assert.True(t, strings.HasSuffix(reply.Text, report.BubbleUnavailable))
}

func TestHandle_ToggleSymbol(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	ctx := context.Background()

	reply := b.Handle(ctx, "1", "/toggle crypto sol")
	assert.Contains(t, reply.Text, "✅ 🟣 سولانا")

	p, err := b.Prefs.GetOrCreate("1")
	require.NoError(t, err)
	assert.Contains(t, p.Crypto, "SOL")

	reply = b.Handle(ctx, "1", "/toggle crypto SOL")
	assert.Contains(t, reply.Text, "🔲 🟣 سولانا")
}

func TestHandle_ToggleListing(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	reply := b.Handle(context.Background(), "1", "/toggle gold")
	assert.Contains(t, reply.Text, "✅ 🌕 سکه امامی")
	assert.Contains(t, reply.Text, "🔲 🔥 طلای آب‌شده")
}

func TestHandle_ValidationErrors(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	ctx := context.Background()
	tests := []struct {
		text string
		want string
	}{
		{"/toggle stocks AAPL", "دسته نامعتبر"},
		{"/toggle crypto NOPE", "این نماد"},
		{"/time 25:00", "HH:MM"},
		{"/time", "HH:MM"},
		{"/report weather", "نوع گزارش نامعتبر"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Contains(t, b.Handle(ctx, "1", tt.text).Text, tt.want)
		})
	}
}

func TestHandle_ScheduleCommands(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	ctx := context.Background()

	b.Handle(ctx, "1", "/time 18:30")
	b.Handle(ctx, "1", "/report currency")
	reply := b.Handle(ctx, "1", "/schedule")

	assert.Contains(t, reply.Text, "✅ فعال")
	assert.Contains(t, reply.Text, "09:00, 18:30")
	assert.Contains(t, reply.Text, "✅ "+model.ReportTitle(model.ReportCurrency))
	assert.Contains(t, reply.Text, "🔲 "+model.ReportTitle(model.ReportCrypto))

	p, err := b.Prefs.GetOrCreate("1")
	require.NoError(t, err)
	assert.True(t, p.Due("18:30"))
}

func TestHandle_Settings(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	reply := b.Handle(context.Background(), "1", ButtonSettings)
	assert.Contains(t, reply.Text, "USD, EUR, AED, USDT_IRT")
	assert.Contains(t, reply.Text, "❌ غیرفعال")
}

func TestHandle_UnknownText(t *testing.T) {
	b := newTestBot(t, stubPrices{})
	assert.Equal(t, useMenuText, b.Handle(context.Background(), "1", "hello").Text)
	assert.Empty(t, b.Handle(context.Background(), "1", "   ").Text)
}
