package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"
	"aShareScanner/internal/screener"
	"aShareScanner/internal/strategy"
	"aShareScanner/internal/utils"
)

// ScanConfig holds the service parameters.
type ScanConfig struct {
	HistoryDays int // Daily bars requested per candidate
	TopN        int // Candidates kept after screening
	Concurrency int // Parallel history fetches
}

// ScanResult is the outcome of one sector scan.
type ScanResult struct {
	RunID      string
	Sector     string
	StartedAt  time.Time
	Duration   time.Duration
	Candidates int
	Analyses   []*strategy.Analysis // In candidate order
}

// Scored counts analyses that produced a numeric score.
func (r *ScanResult) Scored() int {
	n := 0
	for _, a := range r.Analyses {
		if !a.Insufficient() {
			n++
		}
	}
	return n
}

// ScanService orchestrates screening, history fetches and analysis.
type ScanService struct {
	cfg      ScanConfig
	logger   ports.Logger
	provider ports.MarketDataProvider
	themes   *screener.Themes
	engine   *strategy.Engine
	now      func() time.Time
}

// NewScanService creates a new application service instance.
func NewScanService(
	cfg ScanConfig,
	logger ports.Logger,
	provider ports.MarketDataProvider,
	themes *screener.Themes,
	engine *strategy.Engine,
) (*ScanService, error) {

	// Validate dependencies
	if logger == nil || provider == nil || themes == nil || engine == nil {
		return nil, fmt.Errorf("missing required dependencies for ScanService")
	}

	if cfg.HistoryDays < engine.RequiredDataPoints() {
		return nil, fmt.Errorf("configuration HistoryDays (%d) must cover %d bars", cfg.HistoryDays, engine.RequiredDataPoints())
	}
	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("configuration TopN must be positive")
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("configuration Concurrency must be positive")
	}

	return &ScanService{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		themes:   themes,
		engine:   engine,
		now:      time.Now,
	}, nil
}

// Scan screens the snapshot for sector and analyses every candidate. Only a failed
// snapshot aborts the scan; a failed history fetch yields an insufficient analysis.
func (s *ScanService) Scan(ctx context.Context, sector string) (*ScanResult, error) {
	keywords, ok := s.themes.Keywords(sector)
	if !ok {
		return nil, fmt.Errorf("unknown sector %q (known: %s): %w",
			sector, strings.Join(s.themes.Sectors(), ", "), ports.ErrInvalidRequest)
	}

	res := &ScanResult{RunID: uuid.NewString(), Sector: sector, StartedAt: s.now()}
	fields := map[string]interface{}{"runID": res.RunID, "sector": sector, "provider": s.provider.Name()}
	s.logger.Info(ctx, "Starting sector scan", fields)

	quotes, err := s.provider.GetSnapshot(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch market snapshot", fields)
		return nil, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	candidates := screener.Filter(screener.Match(quotes, sector, keywords), s.cfg.TopN)
	res.Candidates = len(candidates)
	if len(candidates) == 0 {
		s.logger.Warn(ctx, "No instruments matched sector", map[string]interface{}{
			"runID":    res.RunID,
			"sector":   sector,
			"snapshot": len(quotes),
		})
		res.Duration = s.now().Sub(res.StartedAt)
		return res, nil
	}

	res.Analyses = make([]*strategy.Analysis, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, q := range candidates {
		i, q := i, q
		g.Go(func() error {
			res.Analyses[i] = s.analyze(gctx, res.RunID, q)
			return nil
		})
	}
	_ = g.Wait() // analyze never fails

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w: %w", ports.ErrContextCanceled, err)
	}

	res.Duration = s.now().Sub(res.StartedAt)
	s.logger.Info(ctx, "Sector scan complete", map[string]interface{}{
		"runID":      res.RunID,
		"sector":     sector,
		"candidates": res.Candidates,
		"scored":     res.Scored(),
		"duration":   res.Duration.String(),
	})
	return res, nil
}

// analyze fetches history for one quote and runs the engine.
func (s *ScanService) analyze(ctx context.Context, runID string, q *domain.MarketQuote) *strategy.Analysis {
	bars, err := s.provider.GetHistory(ctx, q.Symbol, s.cfg.HistoryDays)
	if err != nil {
		s.logger.Warn(ctx, "History unavailable, marking inconclusive", map[string]interface{}{
			"runID":  runID,
			"symbol": q.Symbol,
			"error":  err.Error(),
		})
		bars = nil
	}
	return s.engine.Analyze(ctx, q, bars)
}

// Lookup analyses a single instrument found in the current snapshot.
func (s *ScanService) Lookup(ctx context.Context, symbol string) (*strategy.Analysis, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required: %w", ports.ErrInvalidRequest)
	}

	quotes, err := s.provider.GetSnapshot(ctx)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch market snapshot", map[string]interface{}{"symbol": symbol})
		return nil, fmt.Errorf("failed to fetch market snapshot: %w", err)
	}

	for _, q := range quotes {
		if strings.EqualFold(q.Symbol, symbol) {
			return s.analyze(ctx, uuid.NewString(), q), nil
		}
	}
	return nil, fmt.Errorf("symbol %s not in snapshot: %w", symbol, ports.ErrNotFound)
}

// Watch runs Scan on cronSpec and hands each result to sink until ctx is cancelled
// or the process receives SIGINT/SIGTERM. Failed runs are logged and skipped.
func (s *ScanService) Watch(ctx context.Context, sector, cronSpec string, sink func(*ScanResult)) error {
	if sink == nil {
		return fmt.Errorf("sink is required: %w", ports.ErrInvalidRequest)
	}
	if _, ok := s.themes.Keywords(sector); !ok {
		return fmt.Errorf("unknown sector %q: %w", sector, ports.ErrInvalidRequest)
	}

	// Create a context that can be canceled by signals
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	c := cron.New(cron.WithParser(cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	_, err := c.AddFunc(cronSpec, func() {
		res, err := s.Scan(ctx, sector)
		if err != nil {
			if !errors.Is(err, ports.ErrContextCanceled) {
				s.logger.Error(ctx, err, "Scheduled scan failed", map[string]interface{}{"sector": sector})
			}
			return
		}
		sink(res)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w: %w", cronSpec, ports.ErrConfigurationError, err)
	}

	s.logger.Info(ctx, "Watching sector", map[string]interface{}{"sector": sector, "cron": cronSpec})
	c.Start()
	<-ctx.Done()

	// Wait for a running scan to observe cancellation
	<-c.Stop().Done()
	s.logger.Info(ctx, "Watch stopped", map[string]interface{}{"sector": sector})
	return nil
}

// ReportRows converts analyses to export rows. Inconclusive rows carry no score.
func ReportRows(analyses []*strategy.Analysis) []utils.ReportRow {
	rows := make([]utils.ReportRow, 0, len(analyses))
	for _, a := range analyses {
		row := utils.ReportRow{
			Symbol:   a.Symbol,
			Name:     a.Name,
			Action:   a.Recommendation.Action,
			StopLoss: a.Recommendation.StopLoss,
		}
		if !a.Insufficient() {
			row.CompositeScore = a.Recommendation.Score
		}
		if a.Diagnosis != nil {
			row.RiskTier = a.Diagnosis.RiskTier
		}
		rows = append(rows, row)
	}
	return rows
}

// Export writes the scan result as CSV to path.
func (s *ScanService) Export(ctx context.Context, res *ScanResult, path string) error {
	if res == nil {
		return fmt.Errorf("nothing to export: %w", ports.ErrInvalidRequest)
	}
	if err := utils.WriteReportFile(ReportRows(res.Analyses), path); err != nil {
		s.logger.Error(ctx, err, "Failed to export scan", map[string]interface{}{"runID": res.RunID, "path": path})
		return fmt.Errorf("failed to export scan: %w", err)
	}
	s.logger.Info(ctx, "Scan exported", map[string]interface{}{"runID": res.RunID, "path": path, "rows": len(res.Analyses)})
	return nil
}
