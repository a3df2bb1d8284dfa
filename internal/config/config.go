package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"CryptoTracker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Exchange struct {
		BaseURL       string        `yaml:"base_url"`
		QuoteCurrency string        `yaml:"quote_currency"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"exchange"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ValuationCron string `yaml:"valuation_cron"`
	} `yaml:"schedule"`
	Ledger struct {
		AllowOversell *bool `yaml:"allow_oversell"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads .env if present, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := os.Getenv("QUOTE_CURRENCY"); v != "" {
		c.Exchange.QuoteCurrency = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("VALUATION_CRON"); v != "" {
		c.Schedule.ValuationCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ALLOW_OVERSELL"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALLOW_OVERSELL: %w", err)
		}
		c.Ledger.AllowOversell = &allow
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.QuoteCurrency == "" {
		c.Exchange.QuoteCurrency = model.DefaultQuoteCurrency
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = 30 * time.Second
	}
	if c.Schedule.ValuationCron == "" {
		c.Schedule.ValuationCron = "0 0 * * * *"
	}
	if c.Ledger.AllowOversell == nil {
		allow := true
		c.Ledger.AllowOversell = &allow
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/tracker.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// OversellAllowed reports whether sells may exceed the held quantity.
func (c *Config) OversellAllowed() bool {
	return c.Ledger.AllowOversell == nil || *c.Ledger.AllowOversell
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all set fields are usable.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Exchange.Timeout < 0 {
		return fmt.Errorf("exchange.timeout must not be negative")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Schedule.ValuationCron); err != nil {
		return fmt.Errorf("schedule.valuation_cron: %w", err)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}
