package calculator

import "errors"

// FlatBand is the absolute percent change treated as "no movement".
const FlatBand = 0.1

// Direction of a price move against the snapshot.
type Direction int

const (
	DirectionFlat Direction = iota
	DirectionUp
	DirectionDown
)

// PercentChange returns the percent move from previous to current.
func PercentChange(current, previous float64) (float64, error) {
	if previous == 0 {
		return 0, errors.New("previous price is zero")
	}
	return (current - previous) / previous * 100, nil
}

// Classify maps a percent change to a direction. The flat band is closed:
// exactly +0.1 and -0.1 are flat, anything beyond moves up or down.
func Classify(percent float64) Direction {
	switch {
	case percent >= -FlatBand && percent <= FlatBand:
		return DirectionFlat
	case percent > 0:
		return DirectionUp
	default:
		return DirectionDown
	}
}
