package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/ledger"
	"CryptoTracker/internal/model"
	"CryptoTracker/internal/notifier"
	"CryptoTracker/internal/oracle"
	"CryptoTracker/internal/resampler"
	"CryptoTracker/internal/tracker"
)

// Sender delivers a message to the user.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic valuations and answers chat commands.
type Scheduler struct {
	Cron    *cron.Cron
	Tracker *tracker.Service
	Sender  Sender // nil disables notifications
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *tracker.Service, sender Sender) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Tracker: svc,
		Sender:  sender,
		Ctx:     ctx,
	}
}

// RegisterAll registers the valuation task.
func (s *Scheduler) RegisterAll(valuationCron string) error {
	if _, err := s.Cron.AddFunc(valuationCron, s.valuationTask); err != nil {
		return fmt.Errorf("register valuation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunValuationNow executes the valuation task immediately.
func (s *Scheduler) RunValuationNow() {
	s.valuationTask()
}

func (s *Scheduler) valuationTask() {
	log.Info().Msg("running valuation task")
	v := s.Tracker.Valuation(s.Ctx)
	if len(v.Holdings) == 0 {
		return
	}
	s.trySend(notifier.FormatValuation(&v))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// "/price@MyBot BTC" -> "/price"
	name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch name {
	case "/portfolio", "/start":
		v := s.Tracker.Valuation(ctx)
		return notifier.FormatValuation(&v)
	case "/price":
		if len(args) != 1 {
			return "Usage: /price &lt;ASSET&gt;"
		}
		asset, err := model.ParseAsset(args[0])
		if err != nil {
			return describe(err)
		}
		price, err := s.Tracker.Price(ctx, asset)
		if err != nil {
			return describe(err)
		}
		return notifier.FormatPrice(asset, price)
	case "/chart":
		if len(args) != 2 {
			return "Usage: /chart &lt;ASSET&gt; &lt;RANGE&gt;"
		}
		asset, err := model.ParseAsset(args[0])
		if err != nil {
			return describe(err)
		}
		c, err := s.Tracker.Chart(ctx, asset, model.Range(args[1]))
		if err != nil {
			return describe(err)
		}
		return notifier.FormatChart(&c)
	case "/buy", "/sell":
		if len(args) != 2 {
			return fmt.Sprintf("Usage: %s &lt;ASSET&gt; &lt;QTY&gt;", name)
		}
		asset, err := model.ParseAsset(args[0])
		if err != nil {
			return describe(err)
		}
		qty, err := decimal.NewFromString(args[1])
		if err != nil {
			return "Please enter a valid quantity."
		}
		typ := model.Buy
		if name == "/sell" {
			typ = model.Sell
		}
		tx, pos, err := s.Tracker.Trade(ctx, tracker.TradeRequest{Asset: asset, Type: typ, Quantity: qty})
		if err != nil {
			return describe(err)
		}
		return notifier.FormatTrade(&tx, &pos)
	default:
		return notifier.FormatHelp()
	}
}

// describe turns an operation error into a user-facing reply.
func describe(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction):
		return fmt.Sprintf("❌ Rejected: %v", err)
	case errors.Is(err, oracle.ErrPriceUnavailable):
		return "⚠️ Price is not available right now, try again later."
	case errors.Is(err, resampler.ErrUnsupportedRange):
		return "❌ Unsupported range. Use one of: 24h, 7d, 1M, 1Y, ALL."
	case errors.Is(err, resampler.ErrSuperseded):
		return ""
	default:
		return fmt.Sprintf("❌ %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
