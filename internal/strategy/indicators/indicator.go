package indicators

// Indicator represents a technical indicator computed over a whole close series.
type Indicator interface {
	// Series returns one value per input close; nil entries are not yet warmed up.
	Series(closes []float64) []*float64

	// RequiredDataPoints returns the number of closes needed for the first defined value
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of closes needed for a defined value
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

var (
	_ Indicator = (*MovingAverage)(nil)
	_ Indicator = (*RSI)(nil)
)
