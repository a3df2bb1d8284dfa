package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType is the direction of a trade.
type TxType string

const (
	Buy  TxType = "buy"
	Sell TxType = "sell"
)

// Transaction is an immutable trade event. Quantity is always the positive
// magnitude entered by the caller; the sign comes from Type.
type Transaction struct {
	ID       string          `json:"id"`
	Asset    Asset           `json:"asset" validate:"required,asset"`
	Type     TxType          `json:"type" validate:"required,oneof=buy sell"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Time     time.Time       `json:"time"`
}

// Delta returns the signed quantity change applied to the position.
func (t Transaction) Delta() decimal.Decimal {
	if t.Type == Sell {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// Position is the running holding of one asset.
type Position struct {
	Asset       Asset           `json:"asset"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgBuyPrice decimal.Decimal `json:"avg_buy_price"`
}

// MarketValue is the position valued at price.
func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(p.Quantity)
}

// UnrealizedPnL is price*qty - avg*qty.
func (p Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	return price.Sub(p.AvgBuyPrice).Mul(p.Quantity)
}
