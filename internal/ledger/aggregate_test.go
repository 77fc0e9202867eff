package ledger

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSumByBucketMonth(t *testing.T) {
	records := []MonetaryRecord{
		{Date: date(2024, 1, 5), Amount: 100},
		{Date: date(2024, 1, 20), Amount: 50},
		{Date: date(2024, 2, 1), Amount: 25},
	}
	buckets := SumByBucket(records, GranularityMonth)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets["2024-01"] != 150 {
		t.Fatalf("january sum = %.2f, want 150", buckets["2024-01"])
	}
	if buckets["2024-02"] != 25 {
		t.Fatalf("february sum = %.2f, want 25", buckets["2024-02"])
	}
}

func TestSumByBucketBoundaryBelongsToLaterBucket(t *testing.T) {
	// Midnight on the 1st belongs to the month starting there.
	records := []MonetaryRecord{
		{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Amount: 10},
	}
	buckets := SumByBucket(records, GranularityMonth)
	if _, ok := buckets["2024-01"]; ok {
		t.Fatal("boundary record leaked into the earlier bucket")
	}
	if buckets["2024-02"] != 10 {
		t.Fatalf("boundary record missing from 2024-02: %v", buckets)
	}
}

func TestSumByBucketEmptyInput(t *testing.T) {
	buckets := SumByBucket(nil, GranularityDay)
	if buckets == nil {
		t.Fatal("expected empty map, got nil")
	}
	if len(buckets) != 0 {
		t.Fatalf("expected no buckets, got %d", len(buckets))
	}
}

func TestSumTrailingSeedsZeroBuckets(t *testing.T) {
	today := date(2024, 3, 10)
	records := []MonetaryRecord{
		{Date: date(2024, 3, 10), Amount: 40},
		{Date: date(2024, 3, 8), Amount: 10},
		{Date: date(2024, 2, 1), Amount: 999}, // outside the window
	}
	window := SumTrailing(records, GranularityDay, 7, today)
	if len(window) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(window))
	}
	if window[0].Key != "2024-03-04" || window[6].Key != "2024-03-10" {
		t.Fatalf("unexpected window bounds: %s .. %s", window[0].Key, window[6].Key)
	}
	if window[6].Total != 40 {
		t.Fatalf("today sum = %.2f, want 40", window[6].Total)
	}
	if window[4].Total != 10 {
		t.Fatalf("march 8 sum = %.2f, want 10", window[4].Total)
	}
	var zeroes int
	for _, b := range window {
		if b.Total == 0 {
			zeroes++
		}
	}
	if zeroes != 5 {
		t.Fatalf("expected 5 zero-seeded buckets, got %d", zeroes)
	}
}

func TestSumTrailingMonths(t *testing.T) {
	today := date(2024, 3, 15)
	records := []MonetaryRecord{
		{Date: date(2024, 3, 1), Amount: 5},
		{Date: date(2023, 4, 30), Amount: 7},
		{Date: date(2023, 3, 31), Amount: 11}, // 13 months back, outside
	}
	window := SumTrailing(records, GranularityMonth, 12, today)
	if len(window) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(window))
	}
	if window[0].Key != "2023-04" {
		t.Fatalf("oldest bucket = %s, want 2023-04", window[0].Key)
	}
	if window[0].Total != 7 {
		t.Fatalf("2023-04 sum = %.2f, want 7", window[0].Total)
	}
	if window[11].Total != 5 {
		t.Fatalf("2024-03 sum = %.2f, want 5", window[11].Total)
	}
}

func TestSumTrailingIncludesFutureDatesInsideWindow(t *testing.T) {
	today := date(2024, 3, 10)
	// Dated later today; still inside the queried range.
	records := []MonetaryRecord{
		{Date: time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), Amount: 3},
	}
	window := SumTrailing(records, GranularityDay, 2, today)
	if window[1].Total != 3 {
		t.Fatalf("future-dated record dropped: %+v", window)
	}
}

func TestAggregationRoundTrip(t *testing.T) {
	records := []MonetaryRecord{
		{Date: date(2024, 1, 1), Amount: 12.5},
		{Date: date(2024, 1, 1), Amount: 7.5},
		{Date: date(2024, 1, 31), Amount: 30},
		{Date: date(2024, 6, 15), Amount: 49.99},
		{Date: date(2025, 2, 28), Amount: -20},
	}
	var want float64
	for _, r := range records {
		want += r.Amount
	}
	var got float64
	for _, sum := range SumByBucket(records, GranularityMonth) {
		got += sum
	}
	if got != want {
		t.Fatalf("bucket total %.4f != input total %.4f", got, want)
	}
	got = 0
	for _, sum := range SumByBucket(records, GranularityDay) {
		got += sum
	}
	if got != want {
		t.Fatalf("day bucket total %.4f != input total %.4f", got, want)
	}
}

func TestSumInRange(t *testing.T) {
	records := []MonetaryRecord{
		{Date: date(2024, 1, 1), Amount: 10},
		{Date: date(2024, 1, 15), Amount: 20},
		{Date: date(2024, 2, 1), Amount: 40}, // exclusive upper bound
	}
	got := SumInRange(records, date(2024, 1, 1), date(2024, 2, 1))
	if got != 30 {
		t.Fatalf("SumInRange = %.2f, want 30", got)
	}
}
