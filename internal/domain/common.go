package domain

// Verdict is the discrete trend state emitted by the signal classifier.
type Verdict string

const (
	VerdictBullishCrossover Verdict = "bullish-crossover"
	VerdictUptrend          Verdict = "uptrend"
	VerdictBearishCrossover Verdict = "bearish-crossover"
	VerdictNeutral          Verdict = "neutral"
	VerdictInsufficientData Verdict = "insufficient-data"
)

// RiskTier classifies a composite diagnosis score.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Action is the final recommendation handed to the presentation layer.
type Action string

const (
	ActionBuy        Action = "Buy"
	ActionAccumulate Action = "Accumulate"
	ActionHold       Action = "Hold"
	ActionWatch      Action = "Watch"
	ActionSell       Action = "Sell"
)

// AnalysisStatus tells whether an analysis produced numeric output.
type AnalysisStatus string

const (
	StatusOK               AnalysisStatus = "ok"
	StatusInsufficientData AnalysisStatus = "insufficient-data"
)
