// Package resampler turns a raw price-history response into a fixed-size,
// human-labeled chart series for a named time range.
package resampler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/collector"
	"CryptoTracker/internal/model"
	"CryptoTracker/internal/oracle"
)

var (
	// ErrUnsupportedRange is returned for a range name outside the sampling table.
	ErrUnsupportedRange = errors.New("unsupported range")
	// ErrDataUnavailable is returned by bar lookups when there is no data to look into.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrSuperseded is returned when a newer Resample call started before this one finished.
	// The result has been discarded.
	ErrSuperseded = errors.New("request superseded")
)

// Resampler fetches bars for a range and reduces them to a ChartSeries.
//
// The bars behind the most recent applied series are kept so a chart index
// can be mapped back to its timestamp. Only the newest request may replace them.
type Resampler struct {
	fetcher collector.Fetcher
	quote   string
	oracle  *oracle.Oracle

	seq atomic.Uint64

	mu    sync.RWMutex
	bars  []model.PriceBar
	asset model.Asset
	rng   model.Range
}

// New creates a Resampler. quote is the quote-currency suffix used to build pairs.
func New(fetcher collector.Fetcher, quote string) *Resampler {
	if quote == "" {
		quote = model.DefaultQuoteCurrency
	}
	return &Resampler{
		fetcher: fetcher,
		quote:   quote,
		oracle:  oracle.New(fetcher, quote),
	}
}

// Plan resolves a range name to its sampling plan.
func Plan(rng model.Range) (model.SamplingPlan, error) {
	plan, ok := model.SamplingPlans[rng]
	if !ok {
		return model.SamplingPlan{}, fmt.Errorf("%w: %q", ErrUnsupportedRange, rng)
	}
	return plan, nil
}

// Resample fetches and labels the price history of asset over rng.
//
// A provider failure yields an empty series and a nil error: empty output means
// "no data available". The only errors are ErrUnsupportedRange and ErrSuperseded.
func (r *Resampler) Resample(ctx context.Context, asset model.Asset, rng model.Range) (model.ChartSeries, error) {
	plan, err := Plan(rng)
	if err != nil {
		return model.ChartSeries{}, err
	}
	ticket := r.seq.Add(1)

	pair := asset.Pair(r.quote)
	bars, err := r.fetcher.FetchBars(ctx, pair, plan.Interval, plan.Count)
	if err != nil {
		log.Warn().Err(err).Str("pair", pair).Str("range", string(rng)).Msg("history fetch failed")
		bars = nil
	}
	if len(bars) > plan.Count {
		bars = bars[len(bars)-plan.Count:]
	}

	r.mu.Lock()
	if ticket != r.seq.Load() {
		r.mu.Unlock()
		log.Debug().Str("pair", pair).Str("range", string(rng)).Msg("stale history result discarded")
		return model.EmptySeries(), ErrSuperseded
	}
	r.bars = bars
	r.asset = asset
	r.rng = rng
	r.mu.Unlock()

	return Series(bars, rng), nil
}

// Series builds the chart series for bars already fetched for rng.
func Series(bars []model.PriceBar, rng model.Range) model.ChartSeries {
	if len(bars) == 0 {
		return model.EmptySeries()
	}
	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Close.InexactFloat64()
	}
	return model.ChartSeries{Labels: Labels(bars, rng), Values: values}
}

// CurrentPrice returns the latest price of asset, or oracle.ErrPriceUnavailable.
func (r *Resampler) CurrentPrice(ctx context.Context, asset model.Asset) (decimal.Decimal, error) {
	return r.oracle.Latest(ctx, asset)
}

// Bars returns a copy of the bars behind the latest applied series.
func (r *Resampler) Bars() []model.PriceBar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.PriceBar, len(r.bars))
	copy(out, r.bars)
	return out
}

// Current reports which asset and range the side channel currently holds.
func (r *Resampler) Current() (model.Asset, model.Range) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.asset, r.rng
}

// BarAt maps a chart index back to its raw bar.
func (r *Resampler) BarAt(i int) (model.PriceBar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.bars) == 0 {
		return model.PriceBar{}, ErrDataUnavailable
	}
	if i < 0 || i >= len(r.bars) {
		return model.PriceBar{}, fmt.Errorf("%w: index %d outside [0,%d)", ErrDataUnavailable, i, len(r.bars))
	}
	return r.bars[i], nil
}
