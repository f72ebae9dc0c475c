package calculator

import (
	"math"
	"testing"
)

func TestPercentChange(t *testing.T) {
	p, err := PercentChange(58000, 57000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p-1.7543859649) > 1e-6 {
		t.Errorf("expected ~1.754, got %.6f", p)
	}
	if _, err := PercentChange(100, 0); err == nil {
		t.Error("expected error for zero previous price")
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		percent float64
		want    Direction
	}{
		{0, DirectionFlat},
		{0.0999, DirectionFlat},
		{-0.0999, DirectionFlat},
		{0.1, DirectionFlat},
		{-0.1, DirectionFlat},
		{0.1001, DirectionUp},
		{-0.1001, DirectionDown},
		{1.75, DirectionUp},
		{-12, DirectionDown},
	}
	for _, tt := range tests {
		if got := Classify(tt.percent); got != tt.want {
			t.Errorf("percent %.4f: expected %d, got %d", tt.percent, tt.want, got)
		}
	}
}
