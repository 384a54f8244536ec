package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"aShareScanner/config"
	"aShareScanner/internal/adapters/binanceclient"
	"aShareScanner/internal/adapters/eastmoney"
	"aShareScanner/internal/adapters/logger"
	"aShareScanner/internal/adapters/sqlite"
	"aShareScanner/internal/app"
	"aShareScanner/internal/domain"
	"aShareScanner/internal/marketdata"
	"aShareScanner/internal/ports"
	"aShareScanner/internal/screener"
	"aShareScanner/internal/strategy"
	"aShareScanner/internal/utils"
)

// runtime bundles the wired service and everything that must be closed.
type runtime struct {
	cfg     *config.Config
	logger  *logger.ZapLogger
	repo    *sqlite.Repository
	service *app.ScanService
}

func (r *runtime) Close() {
	ctx := context.Background()
	if err := r.repo.Close(); err != nil {
		r.logger.Error(ctx, err, "Error closing cache repository")
	}
	_ = r.logger.Sync()
}

// setup loads configuration and wires provider, cache, engine and service.
func setup(ctx context.Context) (*runtime, error) {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Debug(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Market Data Provider
	provider, err := newProvider(cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize market data provider", map[string]interface{}{"provider": cfg.Provider})
		return nil, err
	}
	retrying, err := marketdata.NewRetryingProvider(provider, marketdata.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		MinDelay:   cfg.RetryMinDelay,
		MaxDelay:   cfg.RetryMaxDelay,
		Logger:     appLogger,
	})
	if err != nil {
		return nil, err
	}

	// 4. Initialize Cache Repository
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize cache repository")
		return nil, fmt.Errorf("failed to initialize cache repository: %w", err)
	}
	if n, err := repo.Purge(ctx, 24*cfg.HistoryCacheTTL); err != nil {
		appLogger.Warn(ctx, "Failed to purge stale cache rows", map[string]interface{}{"error": err.Error()})
	} else if n > 0 {
		appLogger.Debug(ctx, "Purged stale cache rows", map[string]interface{}{"rows": n})
	}

	var marketData ports.MarketDataProvider = retrying
	if cfg.QuoteCacheTTL > 0 && cfg.HistoryCacheTTL > 0 {
		marketData, err = marketdata.NewCachingProvider(retrying, marketdata.CacheConfig{
			Cache:      repo,
			QuoteTTL:   cfg.QuoteCacheTTL,
			HistoryTTL: cfg.HistoryCacheTTL,
			Logger:     appLogger,
		})
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	// 5. Load Sector Themes
	themes, err := screener.LoadThemes(cfg.SectorsFile)
	if err != nil {
		repo.Close()
		appLogger.Error(ctx, err, "Failed to load sector themes", map[string]interface{}{"path": cfg.SectorsFile})
		return nil, fmt.Errorf("failed to load sector themes: %w", err)
	}

	// 6. Initialize Engine and Service
	engine, err := strategy.New(strategy.DefaultConfig(), appLogger)
	if err != nil {
		repo.Close()
		return nil, err
	}
	service, err := app.NewScanService(app.ScanConfig{
		HistoryDays: cfg.HistoryDays,
		TopN:        cfg.TopN,
		Concurrency: cfg.ScanConcurrency,
	}, appLogger, marketData, themes, engine)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &runtime{cfg: cfg, logger: appLogger, repo: repo, service: service}, nil
}

func newProvider(cfg *config.Config, appLogger ports.Logger) (ports.MarketDataProvider, error) {
	switch cfg.Provider {
	case config.ProviderBinance:
		return binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Symbols:    cfg.BinanceSymbols,
			Logger:     appLogger,
		})
	default:
		return eastmoney.New(eastmoney.Config{
			BaseURL:           cfg.EastmoneyBaseURL,
			HistoryURL:        cfg.EastmoneyHistoryURL,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           cfg.HTTPTimeout,
			Logger:            appLogger,
		})
	}
}

func sectorOrDefault(cfg *config.Config) string {
	if sectorFlag != "" {
		return sectorFlag
	}
	return cfg.DefaultSector
}

func exportPathOrDefault(cfg *config.Config) string {
	if exportFlag != "" {
		return exportFlag
	}
	return cfg.ExportPath
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := rt.service.Scan(ctx, sectorOrDefault(rt.cfg))
	if err != nil {
		return err
	}
	printScan(cmd.OutOrStdout(), res)

	if path := exportPathOrDefault(rt.cfg); path != "" {
		return rt.service.Export(ctx, res, path)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	a, err := rt.service.Lookup(ctx, args[0])
	if err != nil {
		return err
	}
	printAnalysis(cmd.OutOrStdout(), a)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	spec := cronFlag
	if spec == "" {
		spec = rt.cfg.WatchCron
	}
	path := exportPathOrDefault(rt.cfg)
	out := cmd.OutOrStdout()

	return rt.service.Watch(ctx, sectorOrDefault(rt.cfg), spec, func(res *app.ScanResult) {
		printScan(out, res)
		if path != "" {
			_ = rt.service.Export(ctx, res, path) // logged by the service
		}
	})
}

func printScan(w io.Writer, res *app.ScanResult) {
	fmt.Fprintf(w, "Sector %s  run %s  %s\n", res.Sector, res.RunID, res.StartedAt.Format("2006-01-02 15:04:05"))
	if len(res.Analyses) == 0 {
		fmt.Fprintln(w, "No instruments matched.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tCHG%\tSCORE\tRISK\tACTION\tSTOP\tSTRATEGY%\tBENCH%\tREASON")
	for _, a := range res.Analyses {
		fmt.Fprintln(tw, analysisRow(a))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d candidates, %d scored, %s\n", res.Candidates, res.Scored(), res.Duration.Round(time.Millisecond))
}

func printAnalysis(w io.Writer, a *strategy.Analysis) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tCHG%\tSCORE\tRISK\tACTION\tSTOP\tSTRATEGY%\tBENCH%\tREASON")
	fmt.Fprintln(tw, analysisRow(a))
	tw.Flush()

	if a.Diagnosis != nil {
		fmt.Fprintln(w, "Factors:")
		for _, f := range domain.FactorNames {
			fmt.Fprintf(w, "  %-10s %s\n", f, utils.FormatPrice(a.Diagnosis.FactorScores[f]))
		}
	}
	if a.Performance != nil {
		fmt.Fprintf(w, "Max drawdown %s%%  Sharpe %s  Win bars %d/%d\n",
			utils.FormatPrice(a.Performance.MaxDrawdown*100),
			utils.FormatPrice(a.Performance.SharpeRatio),
			a.Performance.WinningBars, a.Performance.WinningBars+a.Performance.LosingBars)
	}
}

func analysisRow(a *strategy.Analysis) string {
	score, risk, strat, bench := "-", "-", "-", "-"
	if !a.Insufficient() && a.Recommendation.Score != nil {
		score = utils.FormatPrice(*a.Recommendation.Score)
	}
	if a.Diagnosis != nil {
		risk = string(a.Diagnosis.RiskTier)
	}
	if a.Backtest != nil {
		strat = utils.FormatPrice(a.Backtest.StrategyReturn)
		bench = utils.FormatPrice(a.Backtest.BenchmarkReturn)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s",
		a.Symbol, a.Name,
		utils.FormatPrice(a.Quote.Price), utils.FormatPrice(a.Quote.ChangePct),
		score, risk, a.Recommendation.Action, utils.FormatPrice(a.Recommendation.StopLoss),
		strat, bench, a.Recommendation.Reason)
}
