package indicators

import (
	"aShareScanner/internal/domain"
)

var (
	ma5   = mustMovingAverage(5)
	ma10  = mustMovingAverage(10)
	ma20  = mustMovingAverage(20)
	rsi14 = mustRSI(14)
	macd  = mustMACD(DefaultMACDConfig())
)

// Compute derives the full indicator series for bars. The result has one point per bar;
// an empty input gives an empty series.
func Compute(bars []*domain.PriceBar) domain.IndicatorSeries {
	series := make(domain.IndicatorSeries, len(bars))
	if len(bars) == 0 {
		return series
	}

	closes := domain.Closes(bars)
	ma5s := ma5.Series(closes)
	ma10s := ma10.Series(closes)
	ma20s := ma20.Series(closes)
	rsis := rsi14.Series(closes)
	dif, dea, hist := macd.Compute(closes)

	for i, bar := range bars {
		series[i] = domain.IndicatorPoint{
			Date:  bar.Date,
			Close: bar.Close,
			MA5:   ma5s[i],
			MA10:  ma10s[i],
			MA20:  ma20s[i],
			DIF:   domain.Float(dif[i]),
			DEA:   domain.Float(dea[i]),
			MACD:  domain.Float(hist[i]),
			RSI14: rsis[i],
		}
	}
	return series
}

func mustMovingAverage(period int) *MovingAverage {
	ma, err := NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: period},
		Type:            SimpleMovingAverage,
	})
	if err != nil {
		panic(err)
	}
	return ma
}

func mustRSI(period int) *RSI {
	r, err := NewRSI(RSIConfig{IndicatorConfig: IndicatorConfig{Period: period}})
	if err != nil {
		panic(err)
	}
	return r
}

func mustMACD(cfg MACDConfig) *MACD {
	m, err := NewMACD(cfg)
	if err != nil {
		panic(err)
	}
	return m
}
