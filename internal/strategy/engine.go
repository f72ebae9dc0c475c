package strategy

import "MarketCourier/internal/model"

// Bands maps the emami coin bubble percent to a guidance zone. Bands are
// checked in order; the buy band excludes its upper bound, the others include it.
var Bands = []struct {
	Upper     float64
	Inclusive bool
	Zone      model.Zone
	Text      string
}{
	{3, false, model.ZoneBuy, "حباب سکه در <b>محدوده پایین (منطقه خرید)</b> قرار دارد. جذابیت <b>خرید سکه</b> یا تبدیل طلای آب‌شده به سکه، افزایش می‌یابد."},
	{7, true, model.ZoneHold, "حباب سکه در <b>محدوده تعادل</b> است. استراتژی منطقی در این بازه، <b>نگهداری دارایی فعلی</b> (چه سکه و چه طلای آب‌شده) به نظر می‌رسد."},
	{15, true, model.ZoneCaution, "حباب سکه در <b>محدوده بالا (منطقه احتیاط)</b> قرار دارد. این شرایط، فرصت <b>فروش پله‌ای سکه</b> و تبدیل آن به طلای آب‌شده را فراهم می‌کند."},
}

// HighRiskText is used above the last band.
const HighRiskText = "حباب سکه در <b>محدوده بسیار بالا (منطقه ریسک)</b> است. ریسک کاهش حباب قابل توجه است و <b>تبدیل سکه به طلای آب‌شده</b> گزینه‌ای کم‌ریسک‌تر به نظر می‌رسد."

// mapZone maps a bubble percent to its band.
func mapZone(percent float64) (model.Zone, string) {
	for _, b := range Bands {
		if percent < b.Upper || (b.Inclusive && percent == b.Upper) {
			return b.Zone, b.Text
		}
	}
	return model.ZoneHighRisk, HighRiskText
}

// Evaluate returns the guidance for the emami coin's bubble percent.
func Evaluate(emamiPercent float64) model.Guidance {
	zone, text := mapZone(emamiPercent)
	return model.Guidance{Zone: zone, Percent: emamiPercent, Text: text}
}
