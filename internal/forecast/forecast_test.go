package forecast

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLinearTrendExtrapolatesSlope(t *testing.T) {
	history := []float64{100, 200, 300, 400}
	got := LinearTrend(history, 3)
	want := []float64{500, 600, 700}
	if len(got) != len(want) {
		t.Fatalf("forecast length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("forecast[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinearTrendSinglePointFlatLines(t *testing.T) {
	got := LinearTrend([]float64{250}, 4)
	for i, v := range got {
		if v != 250 {
			t.Fatalf("forecast[%d] = %v, want 250", i, v)
		}
	}
}

func TestLinearTrendEmptyHistoryForecastsZero(t *testing.T) {
	got := LinearTrend(nil, 3)
	if len(got) != 3 {
		t.Fatalf("forecast length = %d, want 3", len(got))
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("forecast[%d] = %v, want 0", i, v)
		}
	}
}

func TestLinearTrendZeroMonths(t *testing.T) {
	if got := LinearTrend([]float64{1, 2}, 0); got != nil {
		t.Fatalf("expected nil forecast for zero months, got %v", got)
	}
}

func TestMovingAverageUsesWindow(t *testing.T) {
	history := []float64{10, 20, 30, 40}
	got := MovingAverage(history, 2, 2)
	for i, v := range got {
		if !almostEqual(v, 35) {
			t.Fatalf("forecast[%d] = %v, want 35", i, v)
		}
	}
}

func TestMovingAverageOversizedWindowShrinks(t *testing.T) {
	got := MovingAverage([]float64{10, 20}, 12, 1)
	if !almostEqual(got[0], 15) {
		t.Fatalf("forecast[0] = %v, want 15", got[0])
	}
}
