package model

// Range names a display window for the price chart.
type Range string

const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range1M  Range = "1M"
	Range1Y  Range = "1Y"
	RangeAll Range = "ALL"
)

// Ranges lists the supported ranges from shortest to longest.
var Ranges = []Range{Range24h, Range7d, Range1M, Range1Y, RangeAll}

// SamplingPlan is the bar size and bar count requested for a Range.
type SamplingPlan struct {
	Interval Interval `json:"interval"`
	Count    int      `json:"count"`
}

// SamplingPlans is the fixed range table. Chart output depends on these exact values.
var SamplingPlans = map[Range]SamplingPlan{
	Range24h: {Interval: Interval1h, Count: 48},
	Range7d:  {Interval: Interval1h, Count: 168},
	Range1M:  {Interval: Interval4h, Count: 180},
	Range1Y:  {Interval: Interval1d, Count: 365},
	RangeAll: {Interval: Interval1w, Count: 500},
}

// ChartSeries is a labeled value sequence for the chart renderer.
// Labels and Values always have the same length.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// EmptySeries returns a series with no points, meaning "no data available".
func EmptySeries() ChartSeries {
	return ChartSeries{Labels: []string{}, Values: []float64{}}
}

func (s ChartSeries) Len() int { return len(s.Values) }

func (s ChartSeries) Empty() bool { return len(s.Values) == 0 }
