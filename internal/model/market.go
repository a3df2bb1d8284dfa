package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interval is the size of a single price bar.
type Interval string

const (
	Interval1h Interval = "1h"
	Interval4h Interval = "4h"
	Interval1d Interval = "1d"
	Interval1w Interval = "1w"
)

// Duration returns the wall-clock span covered by one bar.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	case Interval1w:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// PriceBar is one raw observation from the historical data source.
type PriceBar struct {
	Time  time.Time       `json:"time"`
	Close decimal.Decimal `json:"close"`
}
