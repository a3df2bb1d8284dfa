package collector

import (
	"context"

	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
)

// Fetcher is the boundary to the price-data provider. Implementations adapt the
// provider's field layout to model.PriceBar and keep the provider's bar order.
type Fetcher interface {
	// FetchBars returns up to limit of the most recent bars of the given interval.
	FetchBars(ctx context.Context, pair string, interval model.Interval, limit int) ([]model.PriceBar, error)
	// FetchCurrentPrice returns the latest traded price for pair.
	FetchCurrentPrice(ctx context.Context, pair string) (decimal.Decimal, error)
	Name() string
}
