// Package marketdata holds the provider-side plumbing shared by every data source:
// quote normalisation, TTL caching and retries.
package marketdata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"aShareScanner/internal/domain"
)

// Canonical column names of a raw quote row.
const (
	FieldSymbol      = "symbol"
	FieldName        = "name"
	FieldPrice       = "price"
	FieldChangePct   = "change_pct"
	FieldPE          = "pe"
	FieldPB          = "pb"
	FieldTurnover    = "turnover"
	FieldMarketCap   = "market_cap"
	FieldVolumeRatio = "volume_ratio"
	FieldIndustry    = "industry"
)

// NormalizeQuote builds a fully populated quote from a raw row. Missing or
// unparsable numeric columns become 0 and a missing industry becomes "".
func NormalizeQuote(row map[string]any) *domain.MarketQuote {
	return &domain.MarketQuote{
		Symbol:      toString(row[FieldSymbol]),
		Name:        toString(row[FieldName]),
		Price:       toFloat(row[FieldPrice]),
		ChangePct:   toFloat(row[FieldChangePct]),
		PE:          toFloat(row[FieldPE]),
		PB:          toFloat(row[FieldPB]),
		Turnover:    toFloat(row[FieldTurnover]),
		MarketCap:   toFloat(row[FieldMarketCap]),
		VolumeRatio: toFloat(row[FieldVolumeRatio]),
		Industry:    toString(row[FieldIndustry]),
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		if s == "-" {
			return ""
		}
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func toFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
