package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a position valued at a live quote.
type Holding struct {
	Position
	Price         decimal.Decimal `json:"price"`
	Priced        bool            `json:"priced"` // false when no quote was available
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// Valuation is a point-in-time view of the whole portfolio.
type Valuation struct {
	Time       time.Time       `json:"time"`
	Holdings   []Holding       `json:"holdings"`
	TotalValue decimal.Decimal `json:"total_value"`
}
