package indicators

import (
	"fmt"
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
}

// RSI implements the Relative Strength Index using simple rolling means of
// gains and losses over the period.
type RSI struct {
	BaseIndicator
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance
func NewRSI(config RSIConfig) (*RSI, error) {
	if config.Period <= 0 {
		return nil, fmt.Errorf("RSI period must be positive, got %d", config.Period)
	}
	return &RSI{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}, nil
}

// Name returns the name of the indicator
func (r *RSI) Name() string {
	return fmt.Sprintf("RSI%d", r.Config.Period)
}

// RequiredDataPoints is period+1 closes, since the window averages period deltas.
func (r *RSI) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Series computes the RSI for every close. Positions before the period-th delta are nil.
// A window without losses yields exactly 100.
func (r *RSI) Series(closes []float64) []*float64 {
	period := r.Config.Period
	out := make([]*float64, len(closes))

	for i := period; i < len(closes); i++ {
		var gains, losses float64
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}
		avgGain := gains / float64(period)
		avgLoss := losses / float64(period)

		var rsi float64
		if avgLoss == 0 {
			rsi = 100
		} else {
			rs := avgGain / avgLoss
			rsi = 100 - (100 / (1 + rs))
		}
		out[i] = &rsi
	}
	return out
}
