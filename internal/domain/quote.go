package domain

// MarketQuote is a snapshot of one instrument at a single evaluation instant.
// Numeric fields the provider could not supply hold 0.
type MarketQuote struct {
	Symbol      string  // Instrument code
	Name        string  // Display name
	Price       float64 // Latest price
	ChangePct   float64 // Percent change versus previous close (e.g., 2.5 for +2.5%)
	PE          float64 // Dynamic price/earnings ratio; <= 0 when loss-making or missing
	PB          float64 // Price/book ratio
	Turnover    float64 // Turnover rate in percent
	MarketCap   float64 // Total market capitalisation
	VolumeRatio float64 // Volume ratio versus recent average
	Industry    string  // Industry classification, "" when unknown
}

// HasPrice reports whether the quote carries a usable current price.
func (q *MarketQuote) HasPrice() bool {
	return q != nil && q.Price > 0
}
