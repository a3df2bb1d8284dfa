package calculator

import (
	"errors"
	"math"
)

// Range returns the highest and lowest value in the series.
func Range(values []float64) (high, low float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, v := range values {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return high, low, nil
}

// ChangePercent returns the percentage move from the first to the last value.
func ChangePercent(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.New("not enough data for change calculation")
	}
	first := values[0]
	if first == 0 {
		return 0, errors.New("first value is zero")
	}
	return (values[len(values)-1] - first) / first * 100, nil
}

// Position returns where current sits within [low, high], clamped to 0.0~1.0.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
