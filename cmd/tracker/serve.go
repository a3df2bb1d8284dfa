package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"CryptoTracker/internal/api"
	"CryptoTracker/internal/collector"
	"CryptoTracker/internal/config"
	"CryptoTracker/internal/ledger"
	"CryptoTracker/internal/notifier"
	"CryptoTracker/internal/oracle"
	"CryptoTracker/internal/recorder"
	"CryptoTracker/internal/resampler"
	"CryptoTracker/internal/scheduler"
	"CryptoTracker/internal/tracker"
)

type serveCmd struct {
	valueOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API, scheduler and Telegram bot" }
func (*serveCmd) Usage() string {
	return `serve [-value-on-start]:
  Run the tracker until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.valueOnStart, "value-on-start", false, "run a valuation immediately after start")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return subcommands.ExitFailure
	}
	log.Info().Msg("CryptoTracker starting...")

	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.Exchange.Timeout)
	log.Info().Str("source", fetcher.Name()).Str("quote", cfg.Exchange.QuoteCurrency).Msg("data source")

	rec := openRecorder(cfg)
	defer rec.Close()

	svc := tracker.NewService(
		ledger.New(ledger.WithOversell(cfg.OversellAllowed())),
		oracle.New(fetcher, cfg.Exchange.QuoteCurrency),
		resampler.New(fetcher, cfg.Exchange.QuoteCurrency),
		rec,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	}

	botView := svc.WithResampler(resampler.New(fetcher, cfg.Exchange.QuoteCurrency))
	sched := scheduler.NewScheduler(ctx, botView, sender)
	if err := sched.RegisterAll(cfg.Schedule.ValuationCron); err != nil {
		log.Error().Err(err).Msg("register cron tasks")
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}
	if c.valueOnStart {
		go sched.RunValuationNow()
	}

	srv := api.NewServer(svc, cfg.HTTP.AllowedOrigins)
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Start(ctx, cfg.HTTP.Addr) }()

	log.Info().Msg("CryptoTracker is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api server")
			return subcommands.ExitFailure
		}
	}
	cancel()
	log.Info().Msg("CryptoTracker stopped")
	return subcommands.ExitSuccess
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
