package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"aShareScanner/config"
	"aShareScanner/internal/adapters/logger"
	"aShareScanner/internal/strategy"
	"aShareScanner/internal/utils"
)

type runResult struct {
	file     string
	analysis *strategy.Analysis
	err      error
}

func main() {
	in := flag.String("in", "", "comma-separated CSV files written by fetch_history")
	flag.Parse()
	if *in == "" {
		log.Fatal("FATAL: -in is required")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	engine, err := strategy.New(strategy.DefaultConfig(), appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize engine: %v", err)
	}

	// 2. Load bars and run each file concurrently
	files := strings.Split(*in, ",")
	results := make([]runResult, len(files))

	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(idx int, filename string) {
			defer wg.Done()
			filename = strings.TrimSpace(filename)
			results[idx].file = filename

			bars, err := utils.ReadBarsFromCSV(filename)
			if err != nil {
				appLogger.Error(context.Background(), err, "Error loading bars", map[string]interface{}{"file": filename})
				results[idx].err = err
				return
			}
			symbol := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
			if len(bars) > 0 && bars[0].Symbol != "" {
				symbol = bars[0].Symbol
			}
			results[idx].analysis = engine.AnalyzeBars(context.Background(), symbol, bars)
		}(i, f)
	}
	wg.Wait()

	// 3. Report
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSYMBOL\tVERDICT\tACTION\tSTRATEGY%\tBENCH%\tIN MARKET\tMAX DD%\tSHARPE\tWIN RATE%")
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t-\terror: %v\n", r.file, r.err)
			continue
		}
		a := r.analysis
		if a.Insufficient() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t-\t-\t-\t-\t-\t-\n", r.file, a.Symbol, a.Signal.Verdict, a.Recommendation.Action)
			continue
		}
		bt, perf := a.Backtest, a.Performance
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\t%s\t%s\n",
			r.file, a.Symbol, a.Signal.Verdict, a.Recommendation.Action,
			utils.FormatPrice(bt.StrategyReturn), utils.FormatPrice(bt.BenchmarkReturn),
			bt.BarsInMarket, len(bt.Positions),
			utils.FormatPrice(perf.MaxDrawdown*100), utils.FormatPrice(perf.SharpeRatio),
			utils.FormatPrice(perf.WinRate*100))
	}
	tw.Flush()

	if failed > 0 {
		os.Exit(1)
	}
}
