package screener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aShareScanner/internal/domain"
)

func symbols(quotes []*domain.MarketQuote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Symbol
	}
	return out
}

func TestMatch_ByName(t *testing.T) {
	quotes := []*domain.MarketQuote{
		{Symbol: "600519", Name: "贵州茅台"},
		{Symbol: "000858", Name: "五粮液"},
		{Symbol: "600036", Name: "招商银行"},
		{Symbol: "000568", Name: "泸州老窖"},
	}
	kw, _ := DefaultThemes().Keywords("白酒")

	got := Match(quotes, "白酒", kw)
	assert.Equal(t, []string{"600519", "000858", "000568"}, symbols(got))
}

func TestMatch_ByIndustryWhenPresent(t *testing.T) {
	quotes := []*domain.MarketQuote{
		{Symbol: "1", Name: "某某科技", Industry: "半导体"},
		{Symbol: "2", Name: "士兰微", Industry: "电子"},
		{Symbol: "3", Name: "某某银行", Industry: "银行"},
	}
	kw, _ := DefaultThemes().Keywords("半导体")

	got := Match(quotes, "半导体", kw)
	assert.Equal(t, []string{"1", "2"}, symbols(got))
}

func TestMatch_IndustryIgnoredWhenAllEmpty(t *testing.T) {
	quotes := []*domain.MarketQuote{
		{Symbol: "1", Name: "某某科技"},
		{Symbol: "2", Name: "中芯国际"},
	}
	got := Match(quotes, "", []string{"芯"})
	assert.Equal(t, []string{"2"}, symbols(got))
}

func TestMatch_NoKeywords(t *testing.T) {
	quotes := []*domain.MarketQuote{{Symbol: "1", Name: "贵州茅台"}}
	assert.Empty(t, Match(quotes, "银行", nil))
}

func TestFilter(t *testing.T) {
	quotes := []*domain.MarketQuote{
		{Symbol: "a", PE: 20, ChangePct: 1},
		{Symbol: "loss", PE: -5, ChangePct: 4},
		{Symbol: "b", PE: 35, ChangePct: 3},
		{Symbol: "rich", PE: 100, ChangePct: 2},
		{Symbol: "crash", PE: 15, ChangePct: -3},
		{Symbol: "c", PE: 8, ChangePct: -2.9},
		{Symbol: "d", PE: 50, ChangePct: 3},
	}

	got := Filter(quotes, 10)
	assert.Equal(t, []string{"b", "d", "a", "c"}, symbols(got))

	got = Filter(quotes, 2)
	assert.Equal(t, []string{"b", "d"}, symbols(got))
}

func TestFilter_NoPEDataDegradesToHead(t *testing.T) {
	quotes := make([]*domain.MarketQuote, 15)
	for i := range quotes {
		quotes[i] = &domain.MarketQuote{Symbol: string(rune('a' + i)), ChangePct: -10}
	}
	got := Filter(quotes, 10)
	require.Len(t, got, 10)
	assert.Equal(t, "a", got[0].Symbol)
}

func TestThemes_Screen(t *testing.T) {
	quotes := []*domain.MarketQuote{
		{Symbol: "600519", Name: "贵州茅台", PE: 28, ChangePct: 0.5},
		{Symbol: "000858", Name: "五粮液", PE: 18, ChangePct: 1.5},
		{Symbol: "600809", Name: "山西汾酒", PE: 120, ChangePct: 2},
		{Symbol: "600036", Name: "招商银行", PE: 6, ChangePct: 3},
	}
	got := DefaultThemes().Screen(quotes, "白酒", 10)
	assert.Equal(t, []string{"000858", "600519"}, symbols(got))

	assert.Empty(t, DefaultThemes().Screen(quotes, "未知", 10))
}
