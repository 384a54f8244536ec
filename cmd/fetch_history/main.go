package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"aShareScanner/config"
	"aShareScanner/internal/adapters/binanceclient"
	"aShareScanner/internal/adapters/eastmoney"
	"aShareScanner/internal/adapters/logger"
	"aShareScanner/internal/marketdata"
	"aShareScanner/internal/ports"
	"aShareScanner/internal/utils"
)

func main() {
	symbol := flag.String("symbol", "600519", "instrument code")
	days := flag.Int("days", 365, "trailing calendar days of daily bars")
	out := flag.String("out", "", "output CSV (default data/<symbol>_<from>_to_<to>.csv)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()
	ctx := context.Background()

	// 3. Initialize Provider
	var provider ports.MarketDataProvider
	if cfg.Provider == config.ProviderBinance {
		provider, err = binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Logger:     appLogger,
		})
	} else {
		provider, err = eastmoney.New(eastmoney.Config{
			BaseURL:           cfg.EastmoneyBaseURL,
			HistoryURL:        cfg.EastmoneyHistoryURL,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           cfg.HTTPTimeout,
			Logger:            appLogger,
		})
	}
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize provider")
		log.Fatalf("FATAL: Failed to initialize provider: %v", err)
	}
	provider, err = marketdata.NewRetryingProvider(provider, marketdata.RetryConfig{
		MaxRetries: cfg.MaxRetries,
		MinDelay:   cfg.RetryMinDelay,
		MaxDelay:   cfg.RetryMaxDelay,
		Logger:     appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize provider: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -*days)
	fmt.Printf("Fetching daily bars for %s from %s to %s via %s...\n",
		*symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), provider.Name())

	bars, err := provider.GetHistory(ctx, *symbol, *days)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching history", map[string]interface{}{"symbol": *symbol})
		log.Fatalf("Error fetching history: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("No bars returned for %s", *symbol)
	}
	appLogger.Info(ctx, "Fetched bars", map[string]interface{}{"symbol": *symbol, "count": len(bars)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_to_%s.csv", *symbol,
			bars[0].Date.Format("20060102"), bars[len(bars)-1].Date.Format("20060102"))
	}
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
}
