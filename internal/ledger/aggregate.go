package ledger

import "time"

// Granularity selects the calendar bucket size for aggregation.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// BucketSum is one bucket of an ordered, pre-seeded trailing window.
type BucketSum struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// SumByBucket buckets dated amounts into calendar day or month buckets and
// sums them. Only buckets that have at least one record appear in the result;
// report views render exactly the periods that carry data. A record dated on
// a bucket boundary belongs to the bucket that starts there.
func SumByBucket(records []MonetaryRecord, g Granularity) map[string]float64 {
	out := make(map[string]float64, len(records))
	for _, rec := range records {
		out[bucketKey(g, rec.Date)] += rec.Amount
	}
	return out
}

// SumTrailing returns the trailing n buckets ending at today, oldest first,
// every bucket present and zero-seeded so dashboards show gaps as zero rather
// than absence. Records outside the window, including future-dated ones
// beyond today, are ignored; future dates inside the window still count.
func SumTrailing(records []MonetaryRecord, g Granularity, n int, today time.Time) []BucketSum {
	if n <= 0 {
		return nil
	}
	buckets := make([]BucketSum, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		var t time.Time
		if g == GranularityMonth {
			start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
			t = start.AddDate(0, i-(n-1), 0)
		} else {
			start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
			t = start.AddDate(0, 0, i-(n-1))
		}
		key := bucketKey(g, t)
		buckets[i] = BucketSum{Key: key}
		index[key] = i
	}
	for _, rec := range records {
		if i, ok := index[bucketKey(g, rec.Date)]; ok {
			buckets[i].Total += rec.Amount
		}
	}
	return buckets
}

// SumInRange sums amounts with from <= date < to.
func SumInRange(records []MonetaryRecord, from, to time.Time) float64 {
	var total float64
	for _, rec := range records {
		if !rec.Date.Before(from) && rec.Date.Before(to) {
			total += rec.Amount
		}
	}
	return total
}

func bucketKey(g Granularity, t time.Time) string {
	if g == GranularityMonth {
		return MonthKey(t)
	}
	return DayKey(t)
}
