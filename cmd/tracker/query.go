package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"CryptoTracker/internal/collector"
	"CryptoTracker/internal/model"
	"CryptoTracker/internal/oracle"
	"CryptoTracker/internal/resampler"
)

type priceCmd struct{}

func (*priceCmd) Name() string             { return "price" }
func (*priceCmd) Synopsis() string         { return "print the latest price of an asset" }
func (*priceCmd) Usage() string            { return "price <ASSET>\n" }
func (*priceCmd) SetFlags(_ *flag.FlagSet) {}

func (*priceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return subcommands.ExitFailure
	}
	asset, err := model.ParseAsset(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.Exchange.Timeout)
	price, err := oracle.New(fetcher, cfg.Exchange.QuoteCurrency).Latest(ctx, asset)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s %s\n", asset, price.StringFixed(2))
	return subcommands.ExitSuccess
}

type chartCmd struct {
	labeledOnly bool
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "print the resampled price history of an asset" }
func (*chartCmd) Usage() string {
	return `chart [-labeled] <ASSET> <24h|7d|1M|1Y|ALL>:
  Print one "label<TAB>price" line per point.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.labeledOnly, "labeled", false, "print only points that carry a label")
}

func (c *chartCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return subcommands.ExitFailure
	}
	asset, err := model.ParseAsset(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	fetcher := collector.NewBinanceFetcher(cfg.Exchange.BaseURL, cfg.Proxy, cfg.Exchange.Timeout)
	series, err := resampler.New(fetcher, cfg.Exchange.QuoteCurrency).Resample(ctx, asset, model.Range(f.Arg(1)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if series.Empty() {
		fmt.Fprintln(os.Stderr, "no data available")
		return subcommands.ExitFailure
	}
	for i, v := range series.Values {
		if c.labeledOnly && series.Labels[i] == "" {
			continue
		}
		fmt.Printf("%s\t%.2f\n", series.Labels[i], v)
	}
	return subcommands.ExitSuccess
}
