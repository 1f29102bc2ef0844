package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantbot/broker"
	"github.com/rustyeddy/quantbot/broker/alpaca"
	"github.com/rustyeddy/quantbot/broker/sim"
	"github.com/rustyeddy/quantbot/config"
	"github.com/rustyeddy/quantbot/engine"
	"github.com/rustyeddy/quantbot/feed"
	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the signal & execution engine from a config file",
	Long: `Run the crossover engine on the configured watch list.

Each poll interval the engine fetches daily history per symbol, evaluates
the SMA/EMA crossover at the newest close, sizes any resulting order
against current equity and submits it to the configured broker. Every
order outcome is journaled.

Example:
  quantbot run --config configs/sim.yaml --once`,
	RunE: runRun,
}

var (
	runConfigPath string
	runOnce       bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger()
	creds := config.LoadCredentials()

	sink, err := newSink(cfg)
	if err != nil {
		return fmt.Errorf("create journal sink: %w", err)
	}
	if sink != nil {
		defer sink.Close()
	}
	ledger := journal.NewLedger(sink, log)

	venue, markFn, err := newBroker(cfg, creds)
	if err != nil {
		return err
	}

	provider := newProvider(cfg, creds, log)

	eng := engine.New(venue, ledger, engine.Options{
		SMAWindow:     cfg.Strategy.SMAWindow,
		EMAWindow:     cfg.Strategy.EMAWindow,
		AllocationPct: cfg.Strategy.AllocationPct,
		OrderType:     orderType(cfg),
		Commission:    cfg.Strategy.Commission,
		SlippagePct:   cfg.Strategy.SlippagePct,
		BrokerTimeout: cfg.BrokerDeadline(),
		Parallelism:   4,
	}, log)
	if markFn != nil {
		eng.SetMarkFunc(markFn)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("mode", string(cfg.Mode)).
		Strs("symbols", cfg.Symbols).
		Int("sma", cfg.Strategy.SMAWindow).
		Int("ema", cfg.Strategy.EMAWindow).
		Msg("engine starting")

	cycle(ctx, log, cfg, provider, eng)
	if runOnce {
		return nil
	}

	ticker := time.NewTicker(cfg.PollEvery())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping on signal")
			return nil
		case <-ticker.C:
			cycle(ctx, log, cfg, provider, eng)
		}
	}
}

// cycle fetches fresh history and runs one decision cycle per symbol.
// Fetch failures skip the symbol for this round; the next tick retries.
func cycle(ctx context.Context, log zerolog.Logger, cfg *config.Config, provider feed.Provider, eng *engine.Engine) {
	series := make([]*market.Series, 0, len(cfg.Symbols))
	for _, sym := range cfg.Symbols {
		s, err := provider.History(ctx, sym, cfg.Strategy.HistoryDays)
		if err != nil {
			log.Error().Err(err).Str("symbol", sym).Msg("history fetch failed")
			continue
		}
		series = append(series, s)
	}

	for _, res := range eng.RunAll(ctx, series) {
		ev := log.Info()
		if res.Err != nil {
			ev = log.Error().Err(res.Err)
		}
		ev.Str("symbol", res.Symbol).
			Str("state", string(res.State)).
			Stringer("signal", res.Signal).
			Int64("qty", res.Quantity).
			Msg("cycle complete")
	}
}

func newSink(cfg *config.Config) (journal.Sink, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return nil, nil
	}
}

func newBroker(cfg *config.Config, creds config.Credentials) (broker.Broker, func(string, float64), error) {
	switch cfg.Mode {
	case config.ModePaper:
		if !creds.Present() {
			return nil, nil, fmt.Errorf("paper mode requires ALPACA_KEY and ALPACA_SECRET")
		}
		return alpaca.NewClient(creds.Key, creds.Secret), nil, nil
	default:
		venue := sim.New(cfg.Account.InitialCash)
		return venue, venue.SetMark, nil
	}
}

// newProvider ranks the data providers: keyed Alpaca data first when
// credentials exist, the unauthenticated Yahoo feed as fallback.
func newProvider(cfg *config.Config, creds config.Credentials, log zerolog.Logger) feed.Provider {
	if creds.Present() {
		return feed.NewChain(log, feed.NewAlpaca(creds.Key, creds.Secret), feed.NewYahoo())
	}
	return feed.NewChain(log, feed.NewYahoo())
}

func orderType(cfg *config.Config) broker.OrderType {
	if cfg.Strategy.OrderType == "limit" {
		return broker.Limit
	}
	return broker.Market
}
