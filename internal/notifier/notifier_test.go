package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoTracker/internal/model"
	"CryptoTracker/internal/tracker"
)

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	err := n.SendWithRetry(context.Background(), "x", 0)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "x", 3)
	assert.Error(t, err)
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if polls.Add(1) == 1 {
				_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /price BTC "}}]}`))
				return
			}
			assert.Equal(t, "8", r.URL.Query().Get("offset"))
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]string
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &payload)
			replies <- payload["text"]
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.BaseURL = srv.URL
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /price BTC", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	<-done
}

func TestFormatValuation(t *testing.T) {
	v := &model.Valuation{
		Time:       time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		TotalValue: decimal.NewFromInt(43000),
		Holdings: []model.Holding{
			{
				Position:      model.Position{Asset: model.BTC, Quantity: decimal.NewFromInt(1), AvgBuyPrice: decimal.NewFromInt(42000)},
				Price:         decimal.NewFromInt(43000),
				Priced:        true,
				MarketValue:   decimal.NewFromInt(43000),
				UnrealizedPnL: decimal.NewFromInt(1000),
			},
			{Position: model.Position{Asset: model.SOL, Quantity: decimal.NewFromInt(10), AvgBuyPrice: decimal.NewFromInt(95)}},
		},
	}
	out := FormatValuation(v)
	assert.Contains(t, out, "$43,000.00")
	assert.Contains(t, out, "$1,000.00")
	assert.Contains(t, out, "SOL: 10 @ avg $95.00 (price unavailable)")
	assert.Contains(t, out, "2024-01-02 03:04 UTC")

	empty := FormatValuation(&model.Valuation{})
	assert.Contains(t, empty, "No positions yet.")
}

func TestFormatTradeAndChart(t *testing.T) {
	tx := &model.Transaction{Asset: model.ETH, Type: model.Sell, Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(3000)}
	pos := &model.Position{Asset: model.ETH, Quantity: decimal.NewFromInt(3), AvgBuyPrice: decimal.NewFromInt(2800)}
	out := FormatTrade(tx, pos)
	assert.Contains(t, out, "Sold 2 ETH @ $3,000.00")
	assert.Contains(t, out, "Holding: 3 ETH (avg $2,800.00)")

	c := &tracker.Chart{Asset: model.BTC, Range: model.Range24h}
	assert.Contains(t, FormatChart(c), "no data available")

	c.Series = model.ChartSeries{Labels: []string{"", ""}, Values: []float64{100, 110}}
	c.Summary = &tracker.Summary{Last: 110, High: 110, Low: 100, ChangePercent: 10, Position: 1}
	out = FormatChart(c)
	assert.Contains(t, out, "Change: +10.00% over 2 points")
	assert.Contains(t, out, "In range: 100%")
}
