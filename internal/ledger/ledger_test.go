package ledger

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoTracker/internal/model"
)

func tx(asset model.Asset, typ model.TxType, qty, price string) model.Transaction {
	return model.Transaction{
		Asset:    asset,
		Type:     typ,
		Quantity: decimal.RequireFromString(qty),
		Price:    decimal.RequireFromString(price),
	}
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestRecord_TwoBuysAverage(t *testing.T) {
	l := New()
	_, err := l.Record(tx(model.BTC, model.Buy, "1", "40000"))
	require.NoError(t, err)
	pos, err := l.Record(tx(model.BTC, model.Buy, "1", "44000"))
	require.NoError(t, err)

	requireDecimal(t, "2", pos.Quantity)
	requireDecimal(t, "42000", pos.AvgBuyPrice)
}

func TestRecord_SellKeepsAverage(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.BTC, model.Buy, "1", "40000"))
	_, _ = l.Record(tx(model.BTC, model.Buy, "1", "44000"))
	pos, err := l.Record(tx(model.BTC, model.Sell, "1", "50000"))
	require.NoError(t, err)

	requireDecimal(t, "1", pos.Quantity)
	requireDecimal(t, "42000", pos.AvgBuyPrice)
}

func TestRecord_BuyOrderDoesNotMatter(t *testing.T) {
	buys := []model.Transaction{
		tx(model.ETH, model.Buy, "3", "100"),
		tx(model.ETH, model.Buy, "1", "200"),
		tx(model.ETH, model.Buy, "4", "50"),
	}
	// (300 + 200 + 200) / 8
	want := "87.5"

	forward := New()
	for _, b := range buys {
		_, err := forward.Record(b)
		require.NoError(t, err)
	}
	reverse := New()
	for i := len(buys) - 1; i >= 0; i-- {
		_, err := reverse.Record(buys[i])
		require.NoError(t, err)
	}

	f, _ := forward.Position(model.ETH)
	r, _ := reverse.Position(model.ETH)
	requireDecimal(t, want, f.AvgBuyPrice)
	requireDecimal(t, want, r.AvgBuyPrice)
	requireDecimal(t, "8", f.Quantity)
}

func TestRecord_SellNeverChangesAverage(t *testing.T) {
	sizes := []string{"0.5", "2", "10", "100"}
	for _, size := range sizes {
		l := New()
		_, _ = l.Record(tx(model.SOL, model.Buy, "2", "95"))
		pos, err := l.Record(tx(model.SOL, model.Sell, size, "1"))
		require.NoError(t, err)
		requireDecimal(t, "95", pos.AvgBuyPrice)
	}
}

func TestRecord_SellFirstCreatesNegativePosition(t *testing.T) {
	l := New()
	pos, err := l.Record(tx(model.XRP, model.Sell, "5", "0.6"))
	require.NoError(t, err)
	requireDecimal(t, "-5", pos.Quantity)
	requireDecimal(t, "0", pos.AvgBuyPrice)
}

func TestRecord_OversellRejectedWhenDisabled(t *testing.T) {
	l := New(WithOversell(false))
	_, err := l.Record(tx(model.BTC, model.Buy, "1", "40000"))
	require.NoError(t, err)

	_, err = l.Record(tx(model.BTC, model.Sell, "1.5", "41000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransaction))

	pos, _ := l.Position(model.BTC)
	requireDecimal(t, "1", pos.Quantity)
	assert.Len(t, l.Transactions(), 1)

	// selling exactly the holding is fine
	pos, err = l.Record(tx(model.BTC, model.Sell, "1", "41000"))
	require.NoError(t, err)
	assert.True(t, pos.Quantity.IsZero())
}

func TestRecord_BuyAfterFlatPosition(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.BTC, model.Buy, "1", "40000"))
	_, _ = l.Record(tx(model.BTC, model.Sell, "1", "45000"))
	pos, err := l.Record(tx(model.BTC, model.Buy, "1", "30000"))
	require.NoError(t, err)
	requireDecimal(t, "1", pos.Quantity)
	// the flat position still carries the old average with zero weight
	requireDecimal(t, "30000", pos.AvgBuyPrice)
}

func TestRecord_BuyBackToZeroGuardsDivision(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.ETH, model.Sell, "2", "2500"))
	pos, err := l.Record(tx(model.ETH, model.Buy, "2", "2600"))
	require.NoError(t, err)
	assert.True(t, pos.Quantity.IsZero())
	assert.True(t, pos.AvgBuyPrice.IsZero())
}

func TestRecord_InvalidTransactions(t *testing.T) {
	tests := []struct {
		name string
		tx   model.Transaction
	}{
		{"zero quantity", tx(model.ETH, model.Buy, "0", "2500")},
		{"negative quantity", tx(model.ETH, model.Buy, "-1", "2500")},
		{"negative price", tx(model.ETH, model.Buy, "1", "-1")},
		{"unknown asset", tx(model.Asset("DOGE"), model.Buy, "1", "1")},
		{"missing asset", tx(model.Asset(""), model.Buy, "1", "1")},
		{"bad type", tx(model.ETH, model.TxType("hold"), "1", "1")},
		{"missing type", tx(model.ETH, model.TxType(""), "1", "1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			_, err := l.Record(tt.tx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransaction))
			assert.Empty(t, l.Positions())
			assert.Empty(t, l.Transactions())
		})
	}
}

func TestRecord_ZeroPriceAllowed(t *testing.T) {
	l := New()
	pos, err := l.Record(tx(model.SOL, model.Buy, "10", "0"))
	require.NoError(t, err)
	requireDecimal(t, "10", pos.Quantity)
	requireDecimal(t, "0", pos.AvgBuyPrice)
}

func TestRecord_TinyAmountsComparedExactly(t *testing.T) {
	l := New()
	tiny := decimal.New(1, -400)

	pos, err := l.Record(model.Transaction{Asset: model.BTC, Type: model.Buy, Quantity: tiny, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, tiny.Equal(pos.Quantity))

	_, err = l.Record(model.Transaction{Asset: model.BTC, Type: model.Buy, Quantity: decimal.NewFromInt(1), Price: tiny.Neg()})
	assert.True(t, errors.Is(err, ErrInvalidTransaction))
	assert.Len(t, l.Transactions(), 1)
}

func TestNewValidator_AssetTag(t *testing.T) {
	v := newValidator()
	type holder struct {
		Asset model.Asset `validate:"asset"`
	}
	assert.NoError(t, v.Struct(holder{Asset: model.SOL}))
	assert.Error(t, v.Struct(holder{Asset: model.Asset("DOGE")}))
}

func TestRecord_AssignsIDAndKeepsOrder(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.BTC, model.Buy, "1", "1"))
	_, _ = l.Record(tx(model.ETH, model.Buy, "2", "1"))
	_, _ = l.Record(tx(model.BTC, model.Sell, "1", "1"))

	txs := l.Transactions()
	require.Len(t, txs, 3)
	assert.Equal(t, model.BTC, txs[0].Asset)
	assert.Equal(t, model.ETH, txs[1].Asset)
	assert.Equal(t, model.Sell, txs[2].Type)
	for _, got := range txs {
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.Time.IsZero())
	}
}

func TestTotalValue_MissingQuoteContributesZero(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.BTC, model.Buy, "2", "40000"))
	_, _ = l.Record(tx(model.ETH, model.Buy, "5", "2500"))

	quotes := map[model.Asset]decimal.Decimal{
		model.BTC: decimal.NewFromInt(43000),
	}
	requireDecimal(t, "86000", l.TotalValue(quotes))

	quotes[model.ETH] = decimal.NewFromInt(3000)
	requireDecimal(t, "101000", l.TotalValue(quotes))

	requireDecimal(t, "0", New().TotalValue(quotes))
}

func TestPositions_Sorted(t *testing.T) {
	l := New()
	_, _ = l.Record(tx(model.SOL, model.Buy, "1", "1"))
	_, _ = l.Record(tx(model.BTC, model.Buy, "1", "1"))
	_, _ = l.Record(tx(model.ETH, model.Buy, "1", "1"))

	got := l.Positions()
	require.Len(t, got, 3)
	assert.Equal(t, []model.Asset{model.BTC, model.ETH, model.SOL},
		[]model.Asset{got[0].Asset, got[1].Asset, got[2].Asset})
}

func TestRecord_ConcurrentBuys(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Record(tx(model.BTC, model.Buy, "1", "100"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pos, ok := l.Position(model.BTC)
	require.True(t, ok)
	requireDecimal(t, "50", pos.Quantity)
	requireDecimal(t, "100", pos.AvgBuyPrice)
	assert.Len(t, l.Transactions(), 50)
}
