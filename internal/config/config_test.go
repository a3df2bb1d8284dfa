package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "USDT", cfg.Exchange.QuoteCurrency)
	assert.Equal(t, 30*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, "0 0 * * * *", cfg.Schedule.ValuationCron)
	assert.True(t, cfg.OversellAllowed())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exchange:
  base_url: https://api.binance.us
  quote_currency: USDC
  timeout: 5s
ledger:
  allow_oversell: false
http:
  addr: ":9090"
  allowed_origins: ["https://tracker.example"]
`), 0o644))

	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.binance.us", cfg.Exchange.BaseURL)
	assert.Equal(t, "USDC", cfg.Exchange.QuoteCurrency)
	assert.Equal(t, 5*time.Second, cfg.Exchange.Timeout)
	assert.False(t, cfg.OversellAllowed())
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://tracker.example"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VALUATION_CRON=0 */15 * * * *\n"), 0o644))
	t.Setenv("VALUATION_CRON", "")
	os.Unsetenv("VALUATION_CRON")

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0 */15 * * * *", cfg.Schedule.ValuationCron)
	os.Unsetenv("VALUATION_CRON")
}

func TestLoad_BadOversellEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("ALLOW_OVERSELL", "maybe")
	_, err := Load(filepath.Join(dir, "none.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := chdirTemp(t)
	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)

	cfg.Telegram.BotToken = "only-token"
	assert.Error(t, cfg.Validate())
	cfg.Telegram.BotToken = ""

	cfg.Schedule.ValuationCron = "not a cron"
	assert.Error(t, cfg.Validate())
}
