// Package ledger keeps one running Position per asset from an ordered
// stream of buy and sell transactions.
//
// Cost basis is a plain running weighted average: buys move it, sells never
// do. There is no lot tracking and realized P&L is not computed.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
)

// ErrInvalidTransaction is returned when a transaction is rejected. The ledger is unchanged.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Option configures a Ledger.
type Option func(*Ledger)

// WithOversell controls whether a sell larger than the held quantity is accepted.
// Accepting it lets the quantity go negative.
func WithOversell(allow bool) Option {
	return func(l *Ledger) { l.allowOversell = allow }
}

// Ledger owns the Position set. Record is its only mutator and is serialized.
type Ledger struct {
	mu            sync.Mutex
	positions     map[model.Asset]*model.Position
	log           []model.Transaction
	allowOversell bool
	validate      *validator.Validate
}

// New creates an empty ledger. Over-selling is allowed unless disabled.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		positions:     make(map[model.Asset]*model.Position),
		allowOversell: true,
		validate:      newValidator(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record applies tx and returns the updated position for tx.Asset.
func (l *Ledger) Record(tx model.Transaction) (model.Position, error) {
	if err := l.validate.Struct(&tx); err != nil {
		return model.Position{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if err := checkAmounts(&tx); err != nil {
		return model.Position{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Time.IsZero() {
		tx.Time = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.positions[tx.Asset]
	if !ok {
		pos = &model.Position{Asset: tx.Asset, Quantity: decimal.Zero, AvgBuyPrice: decimal.Zero}
	}

	next := *pos
	switch tx.Type {
	case model.Buy:
		total := pos.Quantity.Add(tx.Quantity)
		if total.IsZero() {
			next.AvgBuyPrice = decimal.Zero
		} else {
			next.AvgBuyPrice = pos.AvgBuyPrice.Mul(pos.Quantity).
				Add(tx.Price.Mul(tx.Quantity)).
				Div(total)
		}
		next.Quantity = total
	case model.Sell:
		if !l.allowOversell && tx.Quantity.GreaterThan(pos.Quantity) {
			return model.Position{}, fmt.Errorf("%w: sell %s %s exceeds holding %s",
				ErrInvalidTransaction, tx.Quantity, tx.Asset, pos.Quantity)
		}
		next.Quantity = pos.Quantity.Add(tx.Delta())
	}

	l.positions[tx.Asset] = &next
	l.log = append(l.log, tx)

	log.Debug().
		Str("asset", tx.Asset.String()).
		Str("type", string(tx.Type)).
		Str("quantity", next.Quantity.String()).
		Str("avg_buy_price", next.AvgBuyPrice.String()).
		Msg("transaction recorded")
	return next, nil
}

// Position returns the position for asset, if one was ever created.
func (l *Ledger) Position(asset model.Asset) (model.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.positions[asset]
	if !ok {
		return model.Position{}, false
	}
	return *pos, true
}

// Positions returns a copy of every position, sorted by asset.
func (l *Ledger) Positions() []model.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}

// Transactions returns the transaction log in submission order.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// TotalValue sums price*quantity over all positions. An asset without a quote contributes 0.
func (l *Ledger) TotalValue(quotes map[model.Asset]decimal.Decimal) decimal.Decimal {
	return ValueOf(l.Positions(), quotes)
}

// ValueOf is TotalValue over an existing snapshot of positions.
func ValueOf(positions []model.Position, quotes map[model.Asset]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		price, ok := quotes[p.Asset]
		if !ok {
			continue
		}
		total = total.Add(p.MarketValue(price))
	}
	return total
}
