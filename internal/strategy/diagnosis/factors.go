package diagnosis

import (
	"math"

	"aShareScanner/internal/domain"
)

// scoreValuation rewards a low positive PE. Loss-making or unknown PE scores a flat 40.
// Range: [0,100]
func scoreValuation(q *domain.MarketQuote) float64 {
	if q.PE <= 0 {
		return 40
	}
	return 100 - math.Min(q.PE, 100)
}

// scoreTrend starts at 50 and adds for price above MA20 and MA5 above MA20.
// Without MA5 and MA20 the factor scores 0.
func scoreTrend(p *domain.IndicatorPoint) float64 {
	if p == nil || p.MA5 == nil || p.MA20 == nil {
		return 0
	}
	score := 50.0
	if p.Close > *p.MA20 {
		score += 20
	}
	if *p.MA5 > *p.MA20 {
		score += 30
	}
	return score
}

// scoreLiquidity scales turnover rate, capped at 100.
func scoreLiquidity(q *domain.MarketQuote) float64 {
	return math.Min(q.Turnover*10, 100)
}

// scoreMomentum peaks at RSI 50 and falls off linearly on both sides.
// Not clamped.
func scoreMomentum(p *domain.IndicatorPoint) float64 {
	if p == nil || p.RSI14 == nil {
		return 50
	}
	return 100 - math.Abs(50-*p.RSI14)*2
}

// scoreSentiment maps the day's change linearly. Unbounded in both directions:
// +12% gives 110, -15% gives -25.
func scoreSentiment(q *domain.MarketQuote) float64 {
	return 50 + q.ChangePct*5
}
