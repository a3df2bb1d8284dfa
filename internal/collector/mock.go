package collector

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  decimal.Decimal
	Prices map[string]decimal.Decimal // per-pair override of Price
	Bars   []model.PriceBar           // returned as-is when set
	Err    error                      // returned from every call when set
	// Start anchors generated bars; defaults to a fixed date so output is stable.
	Start time.Time

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one FetchBars request.
type MockCall struct {
	Pair     string
	Interval model.Interval
	Limit    int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(ctx context.Context, pair string, interval model.Interval, limit int) ([]model.PriceBar, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Pair: pair, Interval: interval, Limit: limit})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateBars(m.start(), interval, limit, m.Price), nil
}

func (m *MockFetcher) FetchCurrentPrice(ctx context.Context, pair string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if m.Err != nil {
		return decimal.Zero, m.Err
	}
	if p, ok := m.Prices[pair]; ok {
		return p, nil
	}
	return m.Price, nil
}

// Calls returns the FetchBars requests seen so far.
func (m *MockFetcher) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockFetcher) start() time.Time {
	if m.Start.IsZero() {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return m.Start
}

// GenerateBars builds count ascending bars spaced by interval, drifting slowly around base.
func GenerateBars(start time.Time, interval model.Interval, count int, base decimal.Decimal) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	step := interval.Duration()
	for i := 0; i < count; i++ {
		drift := decimal.NewFromFloat(1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:  start.Add(time.Duration(i) * step),
			Close: base.Mul(drift),
		}
	}
	return bars
}
