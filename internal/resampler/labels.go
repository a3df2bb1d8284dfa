package resampler

import (
	"time"

	"CryptoTracker/internal/model"
)

// maxLabels bounds how many points get an x-axis label, not counting the last point.
const maxLabels = 10

// Stride returns the label spacing for n points: max(1, n/10).
func Stride(n int) int {
	step := n / maxLabels
	if step < 1 {
		return 1
	}
	return step
}

// Labels returns one label per bar. Every Stride-th bar and the last bar get a
// formatted time; every other position is the empty string.
func Labels(bars []model.PriceBar, rng model.Range) []string {
	n := len(bars)
	labels := make([]string, n)
	step := Stride(n)
	for i, bar := range bars {
		if i%step == 0 || i == n-1 {
			labels[i] = FormatLabel(bar.Time, rng)
		}
	}
	return labels
}

// FormatLabel renders t for the given range, in UTC.
//
//	24h      -> 15:00
//	7d, 1M   -> 2 Jan
//	1Y, ALL  -> 2 Jan 2006
func FormatLabel(t time.Time, rng model.Range) string {
	t = t.UTC()
	switch rng {
	case model.Range24h:
		return t.Format("15:00")
	case model.Range1Y, model.RangeAll:
		return t.Format("2 Jan 2006")
	default:
		return t.Format("2 Jan")
	}
}
