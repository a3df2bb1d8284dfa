// Package tracker combines the ledger, price oracle and resampler into the
// request/response operations exposed to users.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/calculator"
	"CryptoTracker/internal/ledger"
	"CryptoTracker/internal/model"
	"CryptoTracker/internal/oracle"
	"CryptoTracker/internal/recorder"
	"CryptoTracker/internal/resampler"
)

// Service is the entry point for trades, valuations and charts.
type Service struct {
	Ledger    *ledger.Ledger
	Oracle    *oracle.Oracle
	Resampler *resampler.Resampler
	Recorder  recorder.Recorder
	now       func() time.Time
}

// NewService creates a Service. A nil recorder disables journaling.
func NewService(l *ledger.Ledger, o *oracle.Oracle, r *resampler.Resampler, rec recorder.Recorder) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{Ledger: l, Oracle: o, Resampler: r, Recorder: rec, now: time.Now}
}

// WithResampler returns a Service that shares the ledger, oracle and recorder
// of s but charts through r. A newer chart request only supersedes older ones
// on the same resampler, so each client surface gets its own.
func (s *Service) WithResampler(r *resampler.Resampler) *Service {
	view := *s
	view.Resampler = r
	return &view
}

// TradeRequest is a user trade executed at the live price.
type TradeRequest struct {
	Asset    model.Asset     `json:"asset"`
	Type     model.TxType    `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Trade prices req at the current quote and records it. Without a live price
// the trade is refused with oracle.ErrPriceUnavailable.
func (s *Service) Trade(ctx context.Context, req TradeRequest) (model.Transaction, model.Position, error) {
	if !req.Asset.Valid() {
		return model.Transaction{}, model.Position{}, fmt.Errorf("%w: unknown asset %q", ledger.ErrInvalidTransaction, req.Asset)
	}
	if !req.Quantity.IsPositive() {
		return model.Transaction{}, model.Position{}, fmt.Errorf("%w: quantity must be positive", ledger.ErrInvalidTransaction)
	}
	price, err := s.Oracle.Latest(ctx, req.Asset)
	if err != nil {
		return model.Transaction{}, model.Position{}, err
	}

	tx := model.Transaction{
		ID:       uuid.NewString(),
		Asset:    req.Asset,
		Type:     req.Type,
		Price:    price,
		Quantity: req.Quantity,
		Time:     s.now().UTC(),
	}
	pos, err := s.Ledger.Record(tx)
	if err != nil {
		return model.Transaction{}, model.Position{}, err
	}
	if err := s.Recorder.RecordTransaction(&tx); err != nil {
		log.Error().Err(err).Str("tx", tx.ID).Msg("journal transaction")
	}
	log.Info().
		Str("asset", tx.Asset.String()).
		Str("type", string(tx.Type)).
		Str("quantity", tx.Quantity.String()).
		Str("price", tx.Price.String()).
		Msg("trade executed")
	return tx, pos, nil
}

// Valuation prices every position at a live quote. Positions without a quote
// are reported unpriced and add nothing to the total.
func (s *Service) Valuation(ctx context.Context) model.Valuation {
	positions := s.Ledger.Positions()
	assets := make([]model.Asset, len(positions))
	for i, p := range positions {
		assets[i] = p.Asset
	}
	quotes := s.Oracle.Quotes(ctx, assets)

	v := model.Valuation{
		Time:       s.now().UTC(),
		Holdings:   make([]model.Holding, 0, len(positions)),
		TotalValue: ledger.ValueOf(positions, quotes),
	}
	for _, p := range positions {
		h := model.Holding{Position: p}
		if price, ok := quotes[p.Asset]; ok {
			h.Price = price
			h.Priced = true
			h.MarketValue = p.MarketValue(price)
			h.UnrealizedPnL = p.UnrealizedPnL(price)
		}
		v.Holdings = append(v.Holdings, h)
	}
	if err := s.Recorder.RecordValuation(&v); err != nil {
		log.Error().Err(err).Msg("journal valuation")
	}
	return v
}

// Price returns the live price of asset.
func (s *Service) Price(ctx context.Context, asset model.Asset) (decimal.Decimal, error) {
	return s.Oracle.Latest(ctx, asset)
}

// Summary describes a chart series in a few numbers.
type Summary struct {
	Last          float64 `json:"last"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	ChangePercent float64 `json:"change_percent"`
	// Position is where Last sits between Low (0) and High (1).
	Position float64 `json:"position"`
}

// Chart is a resampled series with its summary. Summary is nil when the series is empty.
type Chart struct {
	Asset   model.Asset       `json:"asset"`
	Range   model.Range       `json:"range"`
	Series  model.ChartSeries `json:"series"`
	Summary *Summary          `json:"summary,omitempty"`
}

// Chart resamples the history of asset over rng.
func (s *Service) Chart(ctx context.Context, asset model.Asset, rng model.Range) (Chart, error) {
	series, err := s.Resampler.Resample(ctx, asset, rng)
	if err != nil {
		return Chart{}, err
	}
	c := Chart{Asset: asset, Range: rng, Series: series}
	if series.Empty() {
		return c, nil
	}
	high, low, _ := calculator.Range(series.Values)
	sum := &Summary{Last: series.Values[series.Len()-1], High: high, Low: low}
	if pct, err := calculator.ChangePercent(series.Values); err == nil {
		sum.ChangePercent = pct
	}
	if pos, err := calculator.Position(sum.Last, high, low); err == nil {
		sum.Position = pos
	}
	c.Summary = sum
	return c, nil
}
