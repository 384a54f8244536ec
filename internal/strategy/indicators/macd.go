package indicators

import "fmt"

// MACDConfig holds the spans of the MACD oscillator.
type MACDConfig struct {
	FastPeriod   int // 12
	SlowPeriod   int // 26
	SignalPeriod int // 9
}

// DefaultMACDConfig returns the conventional 12/26/9 spans.
func DefaultMACDConfig() MACDConfig {
	return MACDConfig{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
}

// MACD computes DIF, DEA and the MACD histogram.
type MACD struct {
	config MACDConfig
}

// NewMACD creates a new MACD indicator instance
func NewMACD(config MACDConfig) (*MACD, error) {
	if config.FastPeriod <= 0 || config.SlowPeriod <= 0 || config.SignalPeriod <= 0 {
		return nil, fmt.Errorf("MACD periods must be positive")
	}
	if config.FastPeriod >= config.SlowPeriod {
		return nil, fmt.Errorf("MACD fast period (%d) must be less than slow period (%d)", config.FastPeriod, config.SlowPeriod)
	}
	return &MACD{config: config}, nil
}

// Name returns the name of the indicator
func (m *MACD) Name() string {
	return "MACD"
}

// Compute returns DIF = EMAfast - EMAslow, DEA = EMAsignal(DIF) and MACD = 2*(DIF-DEA).
// All three are defined from the first close because the EMAs are seeded by it.
func (m *MACD) Compute(closes []float64) (dif, dea, hist []float64) {
	fast := EMA(closes, m.config.FastPeriod)
	slow := EMA(closes, m.config.SlowPeriod)

	dif = make([]float64, len(closes))
	for i := range closes {
		dif[i] = fast[i] - slow[i]
	}
	dea = EMA(dif, m.config.SignalPeriod)

	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = 2 * (dif[i] - dea[i])
	}
	return dif, dea, hist
}
