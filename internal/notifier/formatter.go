package notifier

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
	"CryptoTracker/internal/tracker"
)

func usd(d decimal.Decimal) string {
	return money.NewFromFloat(d.InexactFloat64(), money.USD).Display()
}

// FormatValuation formats a portfolio valuation into a Telegram message.
func FormatValuation(v *model.Valuation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Portfolio</b> | %s\n\n", v.Time.Format("2006-01-02 15:04 UTC")))
	if len(v.Holdings) == 0 {
		b.WriteString("No positions yet.\n")
		return b.String()
	}
	for _, h := range v.Holdings {
		if !h.Priced {
			b.WriteString(fmt.Sprintf("%s: %s @ avg %s (price unavailable)\n",
				h.Asset, h.Quantity.String(), usd(h.AvgBuyPrice)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s × %s = %s (avg %s, P/L %s)\n",
			h.Asset, h.Quantity.String(), usd(h.Price), usd(h.MarketValue),
			usd(h.AvgBuyPrice), usd(h.UnrealizedPnL)))
	}
	b.WriteString(fmt.Sprintf("\n<b>Total:</b> %s\n", usd(v.TotalValue)))
	return b.String()
}

// FormatPrice formats a single quote.
func FormatPrice(asset model.Asset, price decimal.Decimal) string {
	return fmt.Sprintf("💱 %s: %s", asset, usd(price))
}

// FormatTrade formats an executed trade and the resulting position.
func FormatTrade(tx *model.Transaction, pos *model.Position) string {
	verb := "Bought"
	if tx.Type == model.Sell {
		verb = "Sold"
	}
	return fmt.Sprintf("✅ %s %s %s @ %s\nHolding: %s %s (avg %s)",
		verb, tx.Quantity.String(), tx.Asset, usd(tx.Price),
		pos.Quantity.String(), pos.Asset, usd(pos.AvgBuyPrice))
}

// FormatChart formats a chart summary. Labels are not rendered.
func FormatChart(c *tracker.Chart) string {
	if c.Summary == nil {
		return fmt.Sprintf("📉 %s %s: no data available", c.Asset, c.Range)
	}
	s := c.Summary
	return fmt.Sprintf("📈 <b>%s %s</b>\nLast: %.2f\nHigh: %.2f | Low: %.2f\nChange: %+.2f%% over %d points\nIn range: %.0f%%",
		c.Asset, c.Range, s.Last, s.High, s.Low, s.ChangePercent, c.Series.Len(), s.Position*100)
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n" +
		"• /portfolio\n" +
		"• /price &lt;ASSET&gt;\n" +
		"• /chart &lt;ASSET&gt; &lt;24h|7d|1M|1Y|ALL&gt;\n" +
		"• /buy &lt;ASSET&gt; &lt;QTY&gt;\n" +
		"• /sell &lt;ASSET&gt; &lt;QTY&gt;"
}
