package indicators

import (
	"fmt"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators.
// For EMA the period is the span.
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) (*MovingAverage, error) {
	if config.Period <= 0 {
		return nil, fmt.Errorf("moving average period must be positive, got %d", config.Period)
	}
	if config.Type != SimpleMovingAverage && config.Type != ExponentialMovingAverage {
		return nil, fmt.Errorf("unsupported moving average type: %s", config.Type)
	}
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}, nil
}

// Name returns the name of the indicator, e.g. "SMA5".
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s%d", m.config.Type, m.config.Period)
}

// RequiredDataPoints is the SMA window; an EMA is defined from the first close.
func (m *MovingAverage) RequiredDataPoints() int {
	if m.config.Type == ExponentialMovingAverage {
		return 1
	}
	return m.Config.Period
}

// Series computes the moving average for every close.
func (m *MovingAverage) Series(closes []float64) []*float64 {
	if m.config.Type == ExponentialMovingAverage {
		ema := EMA(closes, m.Config.Period)
		out := make([]*float64, len(ema))
		for i := range ema {
			v := ema[i]
			out[i] = &v
		}
		return out
	}
	return SMA(closes, m.Config.Period)
}

// SMA returns the trailing simple moving average of closes.
// Positions before period-1 are nil.
func SMA(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(closes); i++ {
		total := 0.0
		for j := i - period + 1; j <= i; j++ {
			total += closes[j]
		}
		avg := total / float64(period)
		out[i] = &avg
	}
	return out
}

// EMA returns the recursive exponential moving average with smoothing 2/(span+1),
// seeded by the first value: ema[i] = v[i]*alpha + ema[i-1]*(1-alpha).
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}
