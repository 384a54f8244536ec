package domain

import "time"

// PriceBar represents one trading day of an instrument's price history.
type PriceBar struct {
	Date   time.Time // Trading day
	Symbol string    // Instrument code (e.g., "600519")
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price (forward-adjusted)
	Volume float64   // Traded volume
}

// Closes extracts the closing prices of bars in order.
func Closes(bars []*PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
