package domain

import "time"

// Factor names used as keys of DiagnosisResult.FactorScores.
const (
	FactorValuation = "valuation"
	FactorTrend     = "trend"
	FactorLiquidity = "liquidity"
	FactorMomentum  = "momentum"
	FactorSentiment = "sentiment"
)

// FactorNames lists the diagnosis factors in presentation order.
var FactorNames = []string{FactorValuation, FactorTrend, FactorLiquidity, FactorMomentum, FactorSentiment}

// SignalResult is the classifier output for the latest bar.
type SignalResult struct {
	Verdict Verdict
	Score   float64 // Base score plus the verdict's delta
	Reason  string
}

// DiagnosisResult combines the five factor scores of one instrument.
// CompositeScore is nominally within [0,100] but sentiment and momentum are unclamped.
type DiagnosisResult struct {
	CompositeScore float64
	FactorScores   map[string]float64
	RiskTier       RiskTier
}

// EquityPoint is one value of a cumulative return curve.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// BacktestResult reports a long/flat simulation against buy-and-hold.
type BacktestResult struct {
	StrategyReturn  float64 // Total strategy return in percent
	BenchmarkReturn float64 // Total buy-and-hold return in percent
	StrategyCurve   []EquityPoint
	BenchmarkCurve  []EquityPoint
	Positions       []int // Position held at the close of each bar (1 long, 0 flat)
	BarsInMarket    int   // Bars during which the lagged position was long
}

// Recommendation is the final action for one instrument. Score is nil when
// the analysis was inconclusive.
type Recommendation struct {
	Action   Action
	Reason   string
	StopLoss float64
	Score    *float64
}
