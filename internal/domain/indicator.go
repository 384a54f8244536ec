package domain

import "time"

// IndicatorPoint holds the indicator values for one bar.
// A nil field means the indicator has not warmed up yet at that bar; it is never zero by default.
type IndicatorPoint struct {
	Date  time.Time
	Close float64

	MA5  *float64
	MA10 *float64
	MA20 *float64

	DIF  *float64
	DEA  *float64
	MACD *float64

	RSI14 *float64
}

// IndicatorSeries is aligned index-for-index with the price series it was computed from.
type IndicatorSeries []IndicatorPoint

// Last returns the final point, or nil for an empty series.
func (s IndicatorSeries) Last() *IndicatorPoint {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// Float returns a pointer to v, for building indicator points.
func Float(v float64) *float64 {
	return &v
}
