// Package backtesting replays a long/flat moving-average rule over an indicator series.
package backtesting

import (
	"aShareScanner/internal/domain"
)

// Position reports the holding decided at the close of p: long when MA5 is above MA20.
// Undefined averages mean flat.
func Position(p domain.IndicatorPoint) int {
	if p.MA5 == nil || p.MA20 == nil {
		return 0
	}
	if *p.MA5 > *p.MA20 {
		return 1
	}
	return 0
}

// Backtest simulates the rule against buy-and-hold. The position decided on bar i-1
// earns the close-to-close return of bar i, so no bar trades on its own data.
// Both curves start at 1.0 on the first bar; an empty or single-bar series has a
// total return of 0.
func Backtest(series domain.IndicatorSeries) domain.BacktestResult {
	n := len(series)
	result := domain.BacktestResult{
		StrategyCurve:  make([]domain.EquityPoint, 0, n),
		BenchmarkCurve: make([]domain.EquityPoint, 0, n),
		Positions:      make([]int, n),
	}

	strategy, benchmark := 1.0, 1.0
	for i, p := range series {
		result.Positions[i] = Position(p)

		if i > 0 {
			r := pctChange(series[i-1].Close, p.Close)
			benchmark *= 1 + r
			if result.Positions[i-1] == 1 {
				strategy *= 1 + r
				result.BarsInMarket++
			}
		}

		result.StrategyCurve = append(result.StrategyCurve, domain.EquityPoint{Date: p.Date, Value: strategy})
		result.BenchmarkCurve = append(result.BenchmarkCurve, domain.EquityPoint{Date: p.Date, Value: benchmark})
	}

	result.StrategyReturn = (strategy - 1) * 100
	result.BenchmarkReturn = (benchmark - 1) * 100
	return result
}

// pctChange is the fractional change from prev to curr; zero when prev is not a usable price.
func pctChange(prev, curr float64) float64 {
	if prev <= 0 {
		return 0
	}
	return curr/prev - 1
}
