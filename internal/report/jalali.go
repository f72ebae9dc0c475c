package report

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

var (
	persianWeekdays = [7]string{"شنبه", "یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنجشنبه", "جمعه"}
	persianMonths   = [12]string{
		"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
		"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
	}
)

// JalaliDate is a date in the Solar Hijri calendar.
type JalaliDate struct {
	Year  int
	Month int // 1..12
	Day   int
}

// ToJalali converts the calendar date of t (in t's location).
func ToJalali(t time.Time) JalaliDate {
	pt := ptime.New(t)
	return JalaliDate{Year: pt.Year(), Month: int(pt.Month()), Day: pt.Day()}
}

// DateHeader renders the Persian date line shown on top of every report.
// t should already be in the reference timezone.
func DateHeader(t time.Time) string {
	pt := ptime.New(t)
	return fmt.Sprintf("📆 %s %d %s    🕰 %s",
		persianWeekdays[int(pt.Weekday())], pt.Day(), persianMonths[int(pt.Month())-1], t.Format("15:04"))
}
