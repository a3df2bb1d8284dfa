// Package oracle looks up the latest traded price of an asset.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"CryptoTracker/internal/collector"
	"CryptoTracker/internal/model"
)

// ErrPriceUnavailable is returned when no fresh quote could be obtained.
var ErrPriceUnavailable = errors.New("price unavailable")

// Oracle fetches a fresh quote on every call; nothing is cached.
type Oracle struct {
	fetcher collector.Fetcher
	quote   string
}

// New creates an Oracle. quote is the quote-currency suffix, e.g. USDT.
func New(fetcher collector.Fetcher, quote string) *Oracle {
	if quote == "" {
		quote = model.DefaultQuoteCurrency
	}
	return &Oracle{fetcher: fetcher, quote: quote}
}

// Latest returns the current price of asset. It never substitutes a stale or zero value.
func (o *Oracle) Latest(ctx context.Context, asset model.Asset) (decimal.Decimal, error) {
	if !asset.Valid() {
		return decimal.Zero, fmt.Errorf("%w: unknown asset %q", ErrPriceUnavailable, asset)
	}
	pair := asset.Pair(o.quote)
	price, err := o.fetcher.FetchCurrentPrice(ctx, pair)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrPriceUnavailable, pair, price)
	}
	return price, nil
}

// Quotes fetches prices for assets concurrently. Assets whose lookup fails are
// left out of the result.
func (o *Oracle) Quotes(ctx context.Context, assets []model.Asset) map[model.Asset]decimal.Decimal {
	var (
		mu     sync.Mutex
		quotes = make(map[model.Asset]decimal.Decimal, len(assets))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			price, err := o.Latest(gctx, asset)
			if err != nil {
				log.Warn().Err(err).Str("asset", asset.String()).Msg("quote skipped")
				return nil
			}
			mu.Lock()
			quotes[asset] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return quotes
}
