package screener

import (
	"sort"
	"strings"

	"aShareScanner/internal/domain"
)

// Secondary filter bounds.
const (
	MaxPE        = 100.0
	MinChangePct = -3.0
)

// Match returns the quotes belonging to sector, in snapshot order. A quote matches
// when its name contains a keyword, or when the snapshot carries industry data at
// all and its industry contains the sector name.
func Match(quotes []*domain.MarketQuote, sector string, keywords []string) []*domain.MarketQuote {
	useIndustry := false
	for _, q := range quotes {
		if q.Industry != "" {
			useIndustry = true
			break
		}
	}

	var matched []*domain.MarketQuote
	for _, q := range quotes {
		if nameMatches(q.Name, keywords) || (useIndustry && sector != "" && strings.Contains(q.Industry, sector)) {
			matched = append(matched, q)
		}
	}
	return matched
}

func nameMatches(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Filter drops loss-making, overvalued and sharply falling quotes, then keeps the
// topN strongest by change. Without any PE data in the set it keeps the first topN
// unfiltered.
func Filter(quotes []*domain.MarketQuote, topN int) []*domain.MarketQuote {
	hasPE := false
	for _, q := range quotes {
		if q.PE != 0 {
			hasPE = true
			break
		}
	}
	if !hasPE {
		return head(quotes, topN)
	}

	var valid []*domain.MarketQuote
	for _, q := range quotes {
		if q.PE > 0 && q.PE < MaxPE && q.ChangePct > MinChangePct {
			valid = append(valid, q)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].ChangePct > valid[j].ChangePct
	})
	return head(valid, topN)
}

func head(quotes []*domain.MarketQuote, n int) []*domain.MarketQuote {
	if n > 0 && len(quotes) > n {
		return quotes[:n]
	}
	return quotes
}

// Screen applies Match and then Filter.
func (t *Themes) Screen(quotes []*domain.MarketQuote, sector string, topN int) []*domain.MarketQuote {
	keywords, _ := t.Keywords(sector)
	return Filter(Match(quotes, sector, keywords), topN)
}
