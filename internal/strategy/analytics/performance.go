package analytics

import (
	"math"
	"sort"
	"time"

	"aShareScanner/internal/domain"
)

// TradingDaysPerYear annualises the per-bar Sharpe ratio of a daily curve.
const TradingDaysPerYear = 252

// PerformanceMetrics summarises one equity curve
type PerformanceMetrics struct {
	// Basic Metrics
	TotalReturn  float64 // Fractional, final/first - 1
	MaxDrawdown  float64 // Fractional depth below the running peak
	SharpeRatio  float64 // Annualised, risk-free rate 0
	WinningBars  int
	LosingBars   int
	WinRate      float64 // Winning bars over bars with a non-zero return
	BestBar      float64
	WorstBar     float64
	ExposedBars  int // Bars with a non-zero return
	RecoveryDays int // Calendar days from the deepest trough back to a new peak, 0 if never recovered

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	MonthlyReturns       map[string]float64
	Drawdowns            []Drawdown
}

// Drawdown represents a drawdown period
type Drawdown struct {
	StartTime  time.Time
	EndTime    time.Time
	StartValue float64
	EndValue   float64
	Depth      float64
	Duration   time.Duration
}

// AnalyzeCurve calculates performance metrics from an equity curve whose first
// point is the baseline.
func AnalyzeCurve(curve []domain.EquityPoint) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		MonthlyReturns: make(map[string]float64),
		Drawdowns:      make([]Drawdown, 0),
	}

	if len(curve) < 2 || curve[0].Value <= 0 {
		return metrics
	}

	var peak = curve[0]
	var currentDrawdown *Drawdown
	var deepestTrough time.Time
	var consecutiveWins, consecutiveLosses int
	var returns []float64

	monthStart := make(map[string]float64)
	monthEnd := make(map[string]float64)

	for i := 1; i < len(curve); i++ {
		prev, point := curve[i-1], curve[i]
		r := 0.0
		if prev.Value > 0 {
			r = point.Value/prev.Value - 1
		}
		returns = append(returns, r)

		switch {
		case r > 0:
			metrics.WinningBars++
			consecutiveWins++
			consecutiveLosses = 0
		case r < 0:
			metrics.LosingBars++
			consecutiveLosses++
			consecutiveWins = 0
		default:
			// Flat bars neither extend nor break a streak.
		}
		metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, consecutiveWins)
		metrics.MaxConsecutiveLosses = max(metrics.MaxConsecutiveLosses, consecutiveLosses)
		if i == 1 || r > metrics.BestBar {
			metrics.BestBar = r
		}
		if i == 1 || r < metrics.WorstBar {
			metrics.WorstBar = r
		}

		// Monthly returns chain from the last value of the previous month.
		monthKey := point.Date.Format("2006-01")
		if _, ok := monthStart[monthKey]; !ok {
			monthStart[monthKey] = prev.Value
		}
		monthEnd[monthKey] = point.Value

		// Update drawdown tracking
		if point.Value >= peak.Value {
			if currentDrawdown != nil {
				currentDrawdown.EndTime = point.Date
				currentDrawdown.EndValue = point.Value
				currentDrawdown.Duration = currentDrawdown.EndTime.Sub(currentDrawdown.StartTime)
				if currentDrawdown.Depth == metrics.MaxDrawdown && !deepestTrough.IsZero() {
					metrics.RecoveryDays = int(point.Date.Sub(deepestTrough).Hours() / 24)
				}
				metrics.Drawdowns = append(metrics.Drawdowns, *currentDrawdown)
				currentDrawdown = nil
			}
			peak = point
			continue
		}

		drawdown := (peak.Value - point.Value) / peak.Value
		if currentDrawdown == nil {
			currentDrawdown = &Drawdown{
				StartTime:  peak.Date,
				StartValue: peak.Value,
				Depth:      drawdown,
			}
		} else {
			currentDrawdown.Depth = math.Max(currentDrawdown.Depth, drawdown)
		}
		if drawdown > metrics.MaxDrawdown {
			metrics.MaxDrawdown = drawdown
			deepestTrough = point.Date
			metrics.RecoveryDays = 0
		}
	}

	// Close any open drawdown
	if currentDrawdown != nil {
		last := curve[len(curve)-1]
		currentDrawdown.EndTime = last.Date
		currentDrawdown.EndValue = last.Value
		currentDrawdown.Duration = currentDrawdown.EndTime.Sub(currentDrawdown.StartTime)
		metrics.Drawdowns = append(metrics.Drawdowns, *currentDrawdown)
	}

	for month, start := range monthStart {
		if start > 0 {
			metrics.MonthlyReturns[month] = monthEnd[month]/start - 1
		}
	}

	metrics.ExposedBars = metrics.WinningBars + metrics.LosingBars
	if metrics.ExposedBars > 0 {
		metrics.WinRate = float64(metrics.WinningBars) / float64(metrics.ExposedBars)
	}
	metrics.TotalReturn = curve[len(curve)-1].Value/curve[0].Value - 1
	metrics.SharpeRatio = calculateSharpeRatio(returns) * math.Sqrt(TradingDaysPerYear)

	return metrics
}

// calculateSharpeRatio calculates the per-bar Sharpe ratio for a series of returns
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	return mean / stdDev
}

// GetMonthlyReturns returns the monthly returns as a sorted slice
func (m *PerformanceMetrics) GetMonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyReturns))
	for month, r := range m.MonthlyReturns {
		date, _ := time.Parse("2006-01", month)
		returns = append(returns, MonthlyReturn{
			Month:  date,
			Return: r,
		})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}

// MonthlyReturn represents a monthly return value
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}
