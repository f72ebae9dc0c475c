package model

// Zone is the bubble band the emami coin currently sits in.
type Zone string

const (
	ZoneBuy      Zone = "BUY"
	ZoneHold     Zone = "HOLD"
	ZoneCaution  Zone = "CAUTION"
	ZoneHighRisk Zone = "HIGH_RISK"
)

// Guidance is the strategic line attached to a bubble report.
type Guidance struct {
	Zone    Zone
	Percent float64
	Text    string
}
