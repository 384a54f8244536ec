// Package diagnosis scores one instrument on five independent factors.
package diagnosis

import (
	"aShareScanner/internal/domain"
)

// Risk tier thresholds on the composite score.
const (
	HighRiskBelow   = 40.0
	MediumRiskBelow = 70.0
)

// Diagnose scores quote against the latest point of series. The composite is the
// unweighted mean of the five factors and may leave [0,100] since sentiment and
// momentum are unclamped.
func Diagnose(quote *domain.MarketQuote, series domain.IndicatorSeries) domain.DiagnosisResult {
	if quote == nil {
		quote = &domain.MarketQuote{}
	}
	last := series.Last()

	factors := map[string]float64{
		domain.FactorValuation: scoreValuation(quote),
		domain.FactorTrend:     scoreTrend(last),
		domain.FactorLiquidity: scoreLiquidity(quote),
		domain.FactorMomentum:  scoreMomentum(last),
		domain.FactorSentiment: scoreSentiment(quote),
	}

	var sum float64
	for _, name := range domain.FactorNames {
		sum += factors[name]
	}
	composite := sum / float64(len(domain.FactorNames))

	return domain.DiagnosisResult{
		CompositeScore: composite,
		FactorScores:   factors,
		RiskTier:       Tier(composite),
	}
}

// Tier buckets a composite score.
func Tier(composite float64) domain.RiskTier {
	switch {
	case composite < HighRiskBelow:
		return domain.RiskHigh
	case composite < MediumRiskBelow:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
