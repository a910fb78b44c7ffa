package models

// ConfidenceLevel discretizes a composite confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "HIGH"
	ConfidenceModerate ConfidenceLevel = "MODERATE"
	ConfidenceLow      ConfidenceLevel = "LOW"
)

// ConfidenceFactors are the five independent sub-scores, each in [0,1].
type ConfidenceFactors struct {
	DataCompleteness   float64 `json:"data_completeness"`
	DataFreshness      float64 `json:"data_freshness"`
	AgentAgreement     float64 `json:"agent_agreement"`
	SignalStrength     float64 `json:"signal_strength"`
	HistoricalAccuracy float64 `json:"historical_accuracy"`
}

// ConfidenceResult is the composite reliability assessment for one analysis.
type ConfidenceResult struct {
	OverallScore   float64           `json:"overall_score"`
	Level          ConfidenceLevel   `json:"confidence_level"`
	Interpretation string            `json:"interpretation"`
	Factors        ConfidenceFactors `json:"factors"`
	Caveats        []string          `json:"caveats,omitempty"`
}
