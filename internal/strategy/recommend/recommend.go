// Package recommend turns classifier and diagnosis output into a final action.
package recommend

import (
	"aShareScanner/internal/domain"
)

// StopLossRatio is the flat stop below the current price.
const StopLossRatio = 0.95

// ReasonInsufficientHistory is used whenever no score can be trusted.
const ReasonInsufficientHistory = "insufficient history"

type threshold struct {
	action domain.Action
	reason string
	match  func(composite, changePct float64) bool
}

// compositeRules are evaluated in order; the first match wins.
var compositeRules = []threshold{
	{
		action: domain.ActionBuy,
		reason: "strong composite, not yet spiked",
		match:  func(c, chg float64) bool { return c > 75 && chg < 5 },
	},
	{
		action: domain.ActionHold,
		reason: "solid composite, hold and watch",
		match:  func(c, _ float64) bool { return c > 60 },
	},
	{
		action: domain.ActionSell,
		reason: "weak composite, avoid",
		match:  func(c, _ float64) bool { return c < 40 },
	},
}

var verdictActions = map[domain.Verdict]domain.Action{
	domain.VerdictBullishCrossover: domain.ActionBuy,
	domain.VerdictUptrend:          domain.ActionAccumulate,
	domain.VerdictBearishCrossover: domain.ActionSell,
	domain.VerdictNeutral:          domain.ActionWatch,
}

// StopLoss is price less the flat 5% stop.
func StopLoss(price float64) float64 {
	return price * StopLossRatio
}

// Insufficient is the inconclusive recommendation: Watch with no score.
func Insufficient(price float64) domain.Recommendation {
	return domain.Recommendation{
		Action:   domain.ActionWatch,
		Reason:   ReasonInsufficientHistory,
		StopLoss: StopLoss(price),
	}
}

// FromDiagnosis applies the composite thresholds when a full quote is available.
func FromDiagnosis(diag domain.DiagnosisResult, changePct, price float64) domain.Recommendation {
	rec := domain.Recommendation{
		Action:   domain.ActionWatch,
		Reason:   "mixed signals, keep watching",
		StopLoss: StopLoss(price),
		Score:    domain.Float(diag.CompositeScore),
	}
	for _, rule := range compositeRules {
		if rule.match(diag.CompositeScore, changePct) {
			rec.Action = rule.action
			rec.Reason = rule.reason
			break
		}
	}
	return rec
}

// FromSignal maps an MA-only verdict to an action. An insufficient-data verdict
// degrades to Insufficient.
func FromSignal(signal domain.SignalResult, price float64) domain.Recommendation {
	action, ok := verdictActions[signal.Verdict]
	if !ok {
		return Insufficient(price)
	}
	return domain.Recommendation{
		Action:   action,
		Reason:   signal.Reason,
		StopLoss: StopLoss(price),
		Score:    domain.Float(signal.Score),
	}
}

// Recommend picks the diagnosis path when quote carries a price and diag is set,
// and the MA-only path otherwise. lastClose prices the stop when the quote has none.
func Recommend(quote *domain.MarketQuote, signal domain.SignalResult, diag *domain.DiagnosisResult, lastClose float64) domain.Recommendation {
	if quote.HasPrice() && diag != nil {
		return FromDiagnosis(*diag, quote.ChangePct, quote.Price)
	}
	return FromSignal(signal, lastClose)
}
