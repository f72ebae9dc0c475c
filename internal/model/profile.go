package model

import "slices"

// Category is one instrument grouping a subscriber customizes.
type Category string

const (
	CategoryGold     Category = "gold"
	CategoryCurrency Category = "currency"
	CategoryCrypto   Category = "crypto"
)

// ReportType tags one section of a scheduled report.
type ReportType string

const (
	ReportCurrency ReportType = "currency"
	ReportGold     ReportType = "gold"
	ReportCrypto   ReportType = "crypto"
	ReportBubble   ReportType = "bubble"
)

// reportOrder is the fixed order in which report sections are assembled.
var reportOrder = []ReportType{ReportCurrency, ReportGold, ReportCrypto, ReportBubble}

// ReportTypes returns the report enumeration in display order.
func ReportTypes() []ReportType {
	return slices.Clone(reportOrder)
}

// IsReportType reports whether r belongs to the enumeration.
func IsReportType(r ReportType) bool {
	return slices.Contains(reportOrder, r)
}

// ScheduleConfig controls automatic delivery for one subscriber.
type ScheduleConfig struct {
	Active  bool     `json:"active"`
	Times   []string `json:"times"`
	Reports []string `json:"reports"`
}

// Profile is a subscriber's healed preference record.
type Profile struct {
	Currency []string       `json:"currency"`
	Gold     []string       `json:"gold"`
	Crypto   []string       `json:"crypto"`
	Schedule ScheduleConfig `json:"schedule"`
}

// Symbols returns the selection for category, nil for unknown categories.
func (p *Profile) Symbols(c Category) []string {
	switch c {
	case CategoryCurrency:
		return p.Currency
	case CategoryGold:
		return p.Gold
	case CategoryCrypto:
		return p.Crypto
	}
	return nil
}

// Due reports whether the profile should receive a scheduled report at hhmm.
func (p *Profile) Due(hhmm string) bool {
	return p.Schedule.Active && len(p.Schedule.Reports) > 0 && slices.Contains(p.Schedule.Times, hhmm)
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	return Profile{
		Currency: cloneList(p.Currency),
		Gold:     cloneList(p.Gold),
		Crypto:   cloneList(p.Crypto),
		Schedule: ScheduleConfig{
			Active:  p.Schedule.Active,
			Times:   cloneList(p.Schedule.Times),
			Reports: cloneList(p.Schedule.Reports),
		},
	}
}

func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// DefaultSchedule is the schedule given to new subscribers.
func DefaultSchedule() ScheduleConfig {
	return ScheduleConfig{
		Active:  false,
		Times:   []string{"09:00"},
		Reports: []string{string(ReportGold), string(ReportBubble)},
	}
}

// NewProfile returns the starter profile for a first-time subscriber.
func NewProfile() Profile {
	return Profile{
		Currency: []string{"USD", "EUR", "AED", "USDT_IRT"},
		Gold:     []string{"IR_COIN_EMAMI", "IR_GOLD_18K"},
		Crypto:   []string{"BTC", "ETH"},
		Schedule: DefaultSchedule(),
	}
}
