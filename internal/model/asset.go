package model

import (
	"fmt"
	"strings"
)

// Asset is a tradable symbol tracked by the portfolio.
type Asset string

const (
	BTC Asset = "BTC"
	ETH Asset = "ETH"
	XRP Asset = "XRP"
	SOL Asset = "SOL"
)

// DefaultQuoteCurrency is appended to an asset to form the provider trading pair.
const DefaultQuoteCurrency = "USDT"

// Assets lists every supported asset in display order.
var Assets = []Asset{BTC, ETH, XRP, SOL}

// Valid reports whether a is one of the supported assets.
func (a Asset) Valid() bool {
	for _, known := range Assets {
		if a == known {
			return true
		}
	}
	return false
}

// Pair returns the provider trading-pair identifier, e.g. BTC + USDT -> BTCUSDT.
func (a Asset) Pair(quote string) string {
	return string(a) + strings.ToUpper(quote)
}

func (a Asset) String() string { return string(a) }

// ParseAsset parses a case-insensitive asset symbol.
func ParseAsset(s string) (Asset, error) {
	a := Asset(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown asset %q", s)
	}
	return a, nil
}
