package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
)

// DefaultBinanceURL is the public Binance spot REST endpoint.
const DefaultBinanceURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher using the Binance spot REST API.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BinanceFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// binanceIntervals maps bar sizes to Binance kline interval codes.
var binanceIntervals = map[model.Interval]string{
	model.Interval1h: "1h",
	model.Interval4h: "4h",
	model.Interval1d: "1d",
	model.Interval1w: "1w",
}

// FetchBars calls /api/v3/klines. Each kline row is a JSON array whose first
// element is the open time in milliseconds and whose fifth is the close price string.
func (f *BinanceFetcher) FetchBars(ctx context.Context, pair string, interval model.Interval, limit int) ([]model.PriceBar, error) {
	code, ok := binanceIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("binance: unsupported interval %q", interval)
	}
	q := url.Values{}
	q.Set("symbol", pair)
	q.Set("interval", code)
	q.Set("limit", strconv.Itoa(limit))

	body, err := f.get(ctx, "/api/v3/klines", q)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	bars := make([]model.PriceBar, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("decode klines: row %d has %d fields", i, len(row))
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			return nil, fmt.Errorf("decode kline %d open time: %w", i, err)
		}
		var closeStr string
		if err := json.Unmarshal(row[4], &closeStr); err != nil {
			return nil, fmt.Errorf("decode kline %d close: %w", i, err)
		}
		closePrice, err := decimal.NewFromString(closeStr)
		if err != nil {
			return nil, fmt.Errorf("parse kline %d close %q: %w", i, closeStr, err)
		}
		bars = append(bars, model.PriceBar{
			Time:  time.UnixMilli(openTime).UTC(),
			Close: closePrice,
		})
	}
	return bars, nil
}

// FetchCurrentPrice calls /api/v3/ticker/price.
func (f *BinanceFetcher) FetchCurrentPrice(ctx context.Context, pair string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbol", pair)
	body, err := f.get(ctx, "/api/v3/ticker/price", q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch current price: %w", err)
	}
	var result struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return decimal.Zero, fmt.Errorf("decode price: %w", err)
	}
	price, err := decimal.NewFromString(result.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", result.Price, err)
	}
	return price, nil
}

func (f *BinanceFetcher) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	endpoint := f.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
