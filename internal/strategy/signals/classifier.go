// Package signals classifies moving-average state transitions into trend verdicts.
package signals

import (
	"aShareScanner/internal/domain"
)

// BaseScore is the score a neutral verdict carries.
const BaseScore = 60.0

// Rule is one row of the verdict table. Rules are evaluated in order and the
// first whose condition holds decides the verdict.
type Rule struct {
	Verdict   domain.Verdict
	Delta     float64
	Reason    string
	Condition func(prev, curr MASnapshot) bool
}

// MASnapshot is the defined MA state of one bar. MA20 is only meaningful when HasMA20 is set.
type MASnapshot struct {
	MA5, MA10, MA20 float64
	HasMA20         bool
}

// DefaultRules is the verdict priority table: crossovers outrank alignment.
var DefaultRules = []Rule{
	{
		Verdict: domain.VerdictBullishCrossover,
		Delta:   20,
		Reason:  "MA5 crossed above MA10: short-term breakout",
		Condition: func(prev, curr MASnapshot) bool {
			return prev.MA5 <= prev.MA10 && curr.MA5 > curr.MA10
		},
	},
	{
		Verdict: domain.VerdictUptrend,
		Delta:   10,
		Reason:  "MA5 > MA10 > MA20: bullish alignment, uptrend intact",
		Condition: func(prev, curr MASnapshot) bool {
			return curr.HasMA20 && curr.MA5 > curr.MA10 && curr.MA10 > curr.MA20
		},
	},
	{
		Verdict: domain.VerdictBearishCrossover,
		Delta:   -20,
		Reason:  "MA5 crossed below MA10: short-term pullback",
		Condition: func(prev, curr MASnapshot) bool {
			return prev.MA5 >= prev.MA10 && curr.MA5 < curr.MA10
		},
	},
}

var fallback = map[domain.Verdict]string{
	domain.VerdictNeutral:          "no clear trend",
	domain.VerdictInsufficientData: "moving averages not yet available",
}

// Classifier evaluates a rule table against two adjacent indicator points.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules; nil selects DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify returns the verdict for curr given the preceding point prev.
// Missing MA5/MA10 on either bar yields insufficient-data rather than a guess.
func (c *Classifier) Classify(prev, curr *domain.IndicatorPoint) domain.SignalResult {
	p, okPrev := snapshot(prev)
	q, okCurr := snapshot(curr)
	if !okPrev || !okCurr {
		return domain.SignalResult{
			Verdict: domain.VerdictInsufficientData,
			Score:   BaseScore,
			Reason:  fallback[domain.VerdictInsufficientData],
		}
	}

	for _, rule := range c.rules {
		if rule.Condition(p, q) {
			return domain.SignalResult{
				Verdict: rule.Verdict,
				Score:   BaseScore + rule.Delta,
				Reason:  rule.Reason,
			}
		}
	}

	return domain.SignalResult{
		Verdict: domain.VerdictNeutral,
		Score:   BaseScore,
		Reason:  fallback[domain.VerdictNeutral],
	}
}

// ClassifyLatest classifies the last two points of series.
func (c *Classifier) ClassifyLatest(series domain.IndicatorSeries) domain.SignalResult {
	if len(series) < 2 {
		return c.Classify(nil, series.Last())
	}
	return c.Classify(&series[len(series)-2], &series[len(series)-1])
}

func snapshot(p *domain.IndicatorPoint) (MASnapshot, bool) {
	if p == nil || p.MA5 == nil || p.MA10 == nil {
		return MASnapshot{}, false
	}
	s := MASnapshot{MA5: *p.MA5, MA10: *p.MA10}
	if p.MA20 != nil {
		s.MA20 = *p.MA20
		s.HasMA20 = true
	}
	return s, true
}
