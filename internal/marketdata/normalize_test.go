package marketdata

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"aShareScanner/internal/domain"
)

func TestNormalizeQuote(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want *domain.MarketQuote
	}{
		{
			name: "complete row",
			row: map[string]any{
				FieldSymbol: "600519", FieldName: "贵州茅台", FieldPrice: 1700.5,
				FieldChangePct: json.Number("1.25"), FieldPE: "28.1", FieldPB: 8.0,
				FieldTurnover: 0.31, FieldMarketCap: 2.1e12, FieldVolumeRatio: 1.1,
				FieldIndustry: "酿酒行业",
			},
			want: &domain.MarketQuote{
				Symbol: "600519", Name: "贵州茅台", Price: 1700.5, ChangePct: 1.25,
				PE: 28.1, PB: 8, Turnover: 0.31, MarketCap: 2.1e12, VolumeRatio: 1.1,
				Industry: "酿酒行业",
			},
		},
		{
			name: "missing columns back-filled",
			row:  map[string]any{FieldSymbol: "000001", FieldName: "平安银行"},
			want: &domain.MarketQuote{Symbol: "000001", Name: "平安银行"},
		},
		{
			name: "dash and garbage are zero",
			row: map[string]any{
				FieldSymbol: "688001", FieldPrice: "-", FieldPE: "n/a", FieldTurnover: math.NaN(),
				FieldIndustry: "-", FieldChangePct: []int{1},
			},
			want: &domain.MarketQuote{Symbol: "688001"},
		},
		{
			name: "nil row",
			row:  nil,
			want: &domain.MarketQuote{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuote(tt.row))
		})
	}
}
