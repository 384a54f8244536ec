// Package strategy composes the scoring modules into one analysis per instrument.
package strategy

import (
	"context"
	"fmt"

	"aShareScanner/internal/domain"
	"aShareScanner/internal/ports"
	"aShareScanner/internal/strategy/analytics"
	"aShareScanner/internal/strategy/backtesting"
	"aShareScanner/internal/strategy/diagnosis"
	"aShareScanner/internal/strategy/indicators"
	"aShareScanner/internal/strategy/recommend"
	"aShareScanner/internal/strategy/signals"
)

// Config holds parameters for the analysis pipeline.
type Config struct {
	MinBars int // Shortest history that yields a score, e.g., 20
}

// DefaultConfig requires the MA20 window to be filled.
func DefaultConfig() Config {
	return Config{MinBars: 20}
}

// Analysis is everything the engine derives for one instrument in one cycle.
// Diagnosis, Backtest and Performance are nil when the history was insufficient;
// Diagnosis is also nil on the MA-only path.
type Analysis struct {
	Symbol         string
	Name           string
	Quote          *domain.MarketQuote
	Status         domain.AnalysisStatus
	Indicators     domain.IndicatorSeries
	Signal         domain.SignalResult
	Diagnosis      *domain.DiagnosisResult
	Backtest       *domain.BacktestResult
	Performance    *analytics.PerformanceMetrics
	Recommendation domain.Recommendation
}

// Insufficient reports whether the analysis carries no numeric score.
func (a *Analysis) Insufficient() bool {
	return a.Status == domain.StatusInsufficientData
}

// Engine runs the indicator, classifier, diagnosis, backtest and aggregation steps.
// It holds no state across calls and is safe for concurrent use.
type Engine struct {
	cfg        Config
	classifier *signals.Classifier
	logger     ports.Logger
}

// New creates a new Engine instance.
func New(cfg Config, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for engine")
	}
	if cfg.MinBars < 2 {
		return nil, fmt.Errorf("minimum bars must be at least 2, got %d", cfg.MinBars)
	}
	return &Engine{cfg: cfg, classifier: signals.NewClassifier(nil), logger: logger}, nil
}

// RequiredDataPoints returns the minimum number of bars for a scored analysis.
func (e *Engine) RequiredDataPoints() int {
	return e.cfg.MinBars
}

// Analyze scores one instrument from its quote and daily bars. A quote with a
// price selects the diagnosis path; otherwise only the MA verdict is used.
func (e *Engine) Analyze(ctx context.Context, quote *domain.MarketQuote, bars []*domain.PriceBar) *Analysis {
	if quote == nil {
		quote = &domain.MarketQuote{}
	}
	a := &Analysis{
		Symbol:     quote.Symbol,
		Name:       quote.Name,
		Quote:      quote,
		Indicators: indicators.Compute(bars),
	}

	price := quote.Price
	if !quote.HasPrice() && len(bars) > 0 {
		price = bars[len(bars)-1].Close
	}

	if len(bars) < e.cfg.MinBars {
		e.logger.Warn(ctx, "Not enough price history for analysis", map[string]interface{}{
			"symbol":    quote.Symbol,
			"available": len(bars),
			"required":  e.cfg.MinBars,
		})
		a.Status = domain.StatusInsufficientData
		a.Signal = domain.SignalResult{
			Verdict: domain.VerdictInsufficientData,
			Score:   signals.BaseScore,
			Reason:  recommend.ReasonInsufficientHistory,
		}
		a.Recommendation = recommend.Insufficient(price)
		return a
	}

	a.Status = domain.StatusOK
	a.Signal = e.classifier.ClassifyLatest(a.Indicators)

	bt := backtesting.Backtest(a.Indicators)
	a.Backtest = &bt
	a.Performance = analytics.AnalyzeCurve(bt.StrategyCurve)

	if quote.HasPrice() {
		diag := diagnosis.Diagnose(quote, a.Indicators)
		a.Diagnosis = &diag
	}
	a.Recommendation = recommend.Recommend(quote, a.Signal, a.Diagnosis, price)

	fields := map[string]interface{}{
		"symbol":          quote.Symbol,
		"verdict":         a.Signal.Verdict,
		"action":          a.Recommendation.Action,
		"strategyReturn":  bt.StrategyReturn,
		"benchmarkReturn": bt.BenchmarkReturn,
	}
	if a.Diagnosis != nil {
		fields["composite"] = a.Diagnosis.CompositeScore
		fields["riskTier"] = a.Diagnosis.RiskTier
	}
	e.logger.Debug(ctx, "Analysis complete", fields)
	return a
}

// AnalyzeBars runs the MA-only path for a symbol with no quote.
func (e *Engine) AnalyzeBars(ctx context.Context, symbol string, bars []*domain.PriceBar) *Analysis {
	return e.Analyze(ctx, &domain.MarketQuote{Symbol: symbol}, bars)
}
