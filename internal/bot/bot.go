// Package bot maps inbound Telegram text to preference and report operations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"MarketCourier/internal/model"
	"MarketCourier/internal/notifier"
	"MarketCourier/internal/prefs"
	"MarketCourier/internal/report"
)

const (
	ButtonSettings = "⚙️ تنظیمات"

	welcomeText     = "سلام! به ربات تحلیل‌گر شخصی شما خوش آمدید."
	feedErrorText   = "❌ <b>خطای دریافت قیمت لحظه‌ای</b>. سرور API پاسخگو نیست."
	storeErrorText  = "❌ ذخیره تنظیمات با خطا مواجه شد. لطفاً دوباره تلاش کنید."
	useMenuText     = "لطفاً از دکمه‌های منو استفاده کنید."
	selectedMark    = "✅"
	notSelectedMark = "🔲"
)

// PriceSource supplies live prices for on-demand reports.
type PriceSource interface {
	Collect(ctx context.Context) (model.PriceMap, error)
}

// SnapshotReader supplies the comparison baseline.
type SnapshotReader interface {
	Read(ctx context.Context) model.PriceMap
}

// Bot handles one inbound message at a time per call; it is safe for concurrent use.
type Bot struct {
	Prefs    *prefs.Store
	Prices   PriceSource
	Snapshot SnapshotReader
	Location *time.Location
	Now      func() time.Time
}

func New(store *prefs.Store, prices PriceSource, snap SnapshotReader, loc *time.Location) *Bot {
	return &Bot{Prefs: store, Prices: prices, Snapshot: snap, Location: loc, Now: time.Now}
}

// MainKeyboard is the persistent reply keyboard.
func MainKeyboard() [][]string {
	return [][]string{
		{model.ReportTitle(model.ReportCurrency), model.ReportTitle(model.ReportGold)},
		{model.ReportTitle(model.ReportCrypto), model.ReportTitle(model.ReportBubble)},
		{ButtonSettings},
	}
}

// Handle is a notifier.CommandHandler.
func (b *Bot) Handle(ctx context.Context, chatID, text string) notifier.Reply {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.Reply{}
	}
	cmd := fields[0]
	if i := strings.IndexByte(cmd, '@'); i > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:i]
	}
	args := fields[1:]

	switch {
	case cmd == "/start":
		if _, err := b.Prefs.GetOrCreate(chatID); err != nil {
			log.Printf("[WARN] create profile %s: %v", chatID, err)
		}
		return notifier.Reply{Text: welcomeText, Keyboard: MainKeyboard()}
	case cmd == "/settings" || text == ButtonSettings:
		return b.settings(chatID)
	case cmd == "/toggle":
		return b.toggleSymbol(chatID, args)
	case cmd == "/time":
		return b.toggleTime(chatID, args)
	case cmd == "/report":
		return b.toggleReport(chatID, args)
	case cmd == "/schedule":
		return b.toggleActive(chatID)
	}

	if rt, ok := reportRequest(cmd, text); ok {
		return notifier.Reply{Text: b.onDemand(ctx, chatID, rt)}
	}
	return notifier.Reply{Text: useMenuText}
}

// reportRequest resolves a slash command or a main-menu button to a report type.
func reportRequest(cmd, text string) (model.ReportType, bool) {
	for _, rt := range model.ReportTypes() {
		if cmd == "/"+string(rt) || text == model.ReportTitle(rt) {
			return rt, true
		}
	}
	return "", false
}

func (b *Bot) now() time.Time {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	if b.Location == nil {
		return now()
	}
	return now().In(b.Location)
}

func (b *Bot) onDemand(ctx context.Context, chatID string, rt model.ReportType) string {
	live, err := b.Prices.Collect(ctx)
	if err != nil {
		log.Printf("[WARN] on-demand %s report for %s: %v", rt, chatID, err)
		return feedErrorText
	}

	var body string
	if rt == model.ReportBubble {
		body = report.BubbleReport(live)
	} else {
		p, err := b.Prefs.GetOrCreate(chatID)
		if err != nil {
			log.Printf("[WARN] load profile %s: %v", chatID, err)
		}
		body = report.CategoryReport(model.Category(rt), p, live, b.Snapshot.Read(ctx))
	}
	return report.WithHeader(report.DateHeader(b.now()), body)
}

func (b *Bot) settings(chatID string) notifier.Reply {
	p, err := b.Prefs.GetOrCreate(chatID)
	if err != nil {
		log.Printf("[WARN] load profile %s: %v", chatID, err)
		return notifier.Reply{Text: storeErrorText}
	}

	var sb strings.Builder
	sb.WriteString("<b>منوی تنظیمات:</b>\n\n")
	for _, c := range model.Categories() {
		fmt.Fprintf(&sb, "%s: %s\n", model.ReportTitle(model.ReportType(c)), symbolList(p.Symbols(c)))
	}
	sb.WriteString("\n")
	sb.WriteString(scheduleText(p))
	sb.WriteString("\n\n<b>دستورات:</b>\n")
	sb.WriteString("<code>/toggle gold IR_COIN_EMAMI</code> انتخاب یا حذف یک مورد\n")
	sb.WriteString("<code>/toggle gold</code> فهرست موارد قابل انتخاب\n")
	sb.WriteString("<code>/time 09:00</code> افزودن یا حذف ساعت ارسال\n")
	sb.WriteString("<code>/report bubble</code> افزودن یا حذف گزارش خودکار\n")
	sb.WriteString("<code>/schedule</code> فعال یا غیرفعال کردن زمان‌بندی")
	return notifier.Reply{Text: sb.String()}
}

func symbolList(symbols []string) string {
	if len(symbols) == 0 {
		return "<i>هیچ موردی انتخاب نشده</i>"
	}
	return strings.Join(symbols, ", ")
}

func scheduleText(p model.Profile) string {
	status := "❌ غیرفعال"
	if p.Schedule.Active {
		status = "✅ فعال"
	}
	times := "<i>هیچ ساعتی انتخاب نشده</i>"
	if len(p.Schedule.Times) > 0 {
		sorted := slices.Clone(p.Schedule.Times)
		slices.Sort(sorted)
		times = strings.Join(sorted, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>تنظیمات پیام خودکار:</b>\nوضعیت فعلی: <b>%s</b>\nساعت‌های ارسال: %s\n\nگزارش‌های زیر در ساعات مقرر ارسال خواهند شد:\n", status, times)
	for _, rt := range model.ReportTypes() {
		mark := notSelectedMark
		if slices.Contains(p.Schedule.Reports, string(rt)) {
			mark = selectedMark
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, model.ReportTitle(rt))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// catalogText lists every selectable symbol of c with its selection mark.
func catalogText(c model.Category, p model.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "موارد مورد نظر برای نمایش در بخش <b>%s</b> را انتخاب کنید:\n\n", model.ReportTitle(model.ReportType(c)))
	selected := p.Symbols(c)
	for _, info := range model.CategorySymbols(c) {
		mark := notSelectedMark
		if slices.Contains(selected, info.Symbol) {
			mark = selectedMark
		}
		fmt.Fprintf(&sb, "%s %s %s <code>%s</code>\n", mark, info.Emoji, info.Name, info.Symbol)
	}
	return sb.String()
}

func (b *Bot) toggleSymbol(chatID string, args []string) notifier.Reply {
	if len(args) == 0 {
		return notifier.Reply{Text: "دسته را مشخص کنید: <code>currency</code>، <code>gold</code> یا <code>crypto</code>"}
	}
	c := model.Category(strings.ToLower(args[0]))
	if len(args) == 1 {
		if !model.IsCategory(c) {
			return errorReply(prefs.ErrUnknownCategory)
		}
		p, err := b.Prefs.GetOrCreate(chatID)
		if err != nil {
			return errorReply(err)
		}
		return notifier.Reply{Text: catalogText(c, p)}
	}

	p, err := b.Prefs.ToggleSymbol(chatID, c, strings.ToUpper(args[1]))
	if err != nil {
		return errorReply(err)
	}
	return notifier.Reply{Text: catalogText(c, p)}
}

func (b *Bot) toggleTime(chatID string, args []string) notifier.Reply {
	if len(args) != 1 {
		return errorReply(prefs.ErrInvalidTime)
	}
	p, err := b.Prefs.ToggleScheduleTime(chatID, args[0])
	if err != nil {
		return errorReply(err)
	}
	return notifier.Reply{Text: scheduleText(p)}
}

func (b *Bot) toggleReport(chatID string, args []string) notifier.Reply {
	if len(args) != 1 {
		return errorReply(prefs.ErrUnknownReport)
	}
	p, err := b.Prefs.ToggleScheduleReport(chatID, model.ReportType(strings.ToLower(args[0])))
	if err != nil {
		return errorReply(err)
	}
	return notifier.Reply{Text: scheduleText(p)}
}

func (b *Bot) toggleActive(chatID string) notifier.Reply {
	p, err := b.Prefs.ToggleScheduleActive(chatID)
	if err != nil {
		return errorReply(err)
	}
	return notifier.Reply{Text: scheduleText(p)}
}

func errorReply(err error) notifier.Reply {
	switch {
	case errors.Is(err, prefs.ErrUnknownCategory):
		return notifier.Reply{Text: "❌ دسته نامعتبر است. یکی از <code>currency</code>، <code>gold</code> یا <code>crypto</code> را وارد کنید."}
	case errors.Is(err, prefs.ErrUnknownSymbol):
		return notifier.Reply{Text: "❌ این نماد در فهرست این دسته وجود ندارد."}
	case errors.Is(err, prefs.ErrInvalidTime):
		return notifier.Reply{Text: "❌ ساعت باید به شکل <code>HH:MM</code> باشد، مثلاً <code>/time 09:00</code>"}
	case errors.Is(err, prefs.ErrUnknownReport):
		return notifier.Reply{Text: "❌ نوع گزارش نامعتبر است: <code>currency</code>، <code>gold</code>، <code>crypto</code> یا <code>bubble</code>"}
	default:
		log.Printf("[ERROR] preference update: %v", err)
		return notifier.Reply{Text: storeErrorText}
	}
}
