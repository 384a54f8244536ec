package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aShareScanner/internal/domain"
)

func TestFromDiagnosis(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		changePct float64
		want      domain.Action
	}{
		{"quality not spiked", 80, 2, domain.ActionBuy},
		{"quality already spiked", 80, 6, domain.ActionHold},
		{"boundary 75 is not buy", 75, 0, domain.ActionHold},
		{"solid", 65, 0, domain.ActionHold},
		{"boundary 60 is watch", 60, 0, domain.ActionWatch},
		{"middling", 50, -1, domain.ActionWatch},
		{"boundary 40 is watch", 40, 0, domain.ActionWatch},
		{"weak", 39.9, 0, domain.ActionSell},
		{"above range from unclamped factors", 110, 1, domain.ActionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := FromDiagnosis(domain.DiagnosisResult{CompositeScore: tt.composite}, tt.changePct, 20)
			assert.Equal(t, tt.want, rec.Action)
			assert.NotEmpty(t, rec.Reason)
			require.NotNil(t, rec.Score)
			assert.Equal(t, tt.composite, *rec.Score)
			assert.InDelta(t, 19, rec.StopLoss, 1e-9)
		})
	}
}

func TestFromSignal(t *testing.T) {
	tests := []struct {
		verdict domain.Verdict
		want    domain.Action
	}{
		{domain.VerdictBullishCrossover, domain.ActionBuy},
		{domain.VerdictUptrend, domain.ActionAccumulate},
		{domain.VerdictBearishCrossover, domain.ActionSell},
		{domain.VerdictNeutral, domain.ActionWatch},
	}

	for _, tt := range tests {
		t.Run(string(tt.verdict), func(t *testing.T) {
			rec := FromSignal(domain.SignalResult{Verdict: tt.verdict, Score: 70, Reason: "r"}, 10)
			assert.Equal(t, tt.want, rec.Action)
			assert.Equal(t, "r", rec.Reason)
			require.NotNil(t, rec.Score)
			assert.Equal(t, 70.0, *rec.Score)
			assert.InDelta(t, 9.5, rec.StopLoss, 1e-9)
		})
	}
}

func TestFromSignal_InsufficientData(t *testing.T) {
	rec := FromSignal(domain.SignalResult{Verdict: domain.VerdictInsufficientData, Score: 60}, 10)
	assert.Equal(t, domain.ActionWatch, rec.Action)
	assert.Equal(t, ReasonInsufficientHistory, rec.Reason)
	assert.Nil(t, rec.Score)
	assert.InDelta(t, 9.5, rec.StopLoss, 1e-9)
}

func TestRecommend_PathSelection(t *testing.T) {
	signal := domain.SignalResult{Verdict: domain.VerdictBearishCrossover, Score: 40, Reason: "pullback"}
	diag := &domain.DiagnosisResult{CompositeScore: 80}

	withQuote := Recommend(&domain.MarketQuote{Price: 100, ChangePct: 1}, signal, diag, 98)
	assert.Equal(t, domain.ActionBuy, withQuote.Action)
	assert.InDelta(t, 95, withQuote.StopLoss, 1e-9)

	noPrice := Recommend(&domain.MarketQuote{}, signal, diag, 98)
	assert.Equal(t, domain.ActionSell, noPrice.Action)
	assert.InDelta(t, 93.1, noPrice.StopLoss, 1e-9)

	nilQuote := Recommend(nil, signal, nil, 98)
	assert.Equal(t, domain.ActionSell, nilQuote.Action)
}

func TestInsufficient(t *testing.T) {
	rec := Insufficient(0)
	assert.Equal(t, domain.ActionWatch, rec.Action)
	assert.Nil(t, rec.Score)
	assert.Equal(t, 0.0, rec.StopLoss)
}
