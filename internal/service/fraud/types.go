package fraud

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
)

// FraudSeverity represents the risk band of a prediction
type FraudSeverity string

const (
	SeverityClean    FraudSeverity = "clean"
	SeverityLow      FraudSeverity = "low"
	SeverityMedium   FraudSeverity = "medium"
	SeverityHigh     FraudSeverity = "high"
	SeverityCritical FraudSeverity = "critical"
)

// SeverityFor maps a probability onto the risk bands.
func SeverityFor(p float64) FraudSeverity {
	switch {
	case p >= RiskScoreHigh:
		return SeverityCritical
	case p >= RiskScoreMLAnomalyThreshold:
		return SeverityHigh
	case p >= RiskScoreMedium:
		return SeverityMedium
	case p >= RiskScoreLow:
		return SeverityLow
	default:
		return SeverityClean
	}
}

// Prediction is the model output for one feature row
type Prediction struct {
	Features    features.Row  `json:"features"`
	Probability float64       `json:"probability"`
	Severity    FraudSeverity `json:"severity"`
}

// SourceIndex is the position of the originating record in the input batch.
func (p Prediction) SourceIndex() int {
	return p.Features.SourceIndex
}

// Attribution is one feature's signed contribution in log-odds
type Attribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Explanation lists the strongest contributions for one prediction
type Explanation struct {
	// SourceIndex identifies the explained record in the input batch
	SourceIndex  int           `json:"source_index"`
	BaseValue    float64       `json:"base_value"`
	Attributions []Attribution `json:"attributions"`
}

// BatchResult is the outcome of scoring an uploaded batch.
// Predictions are in ascending transaction-time order.
type BatchResult struct {
	ID              uuid.UUID    `json:"id"`
	ScoredAt        time.Time    `json:"scored_at"`
	ModelVersion    string       `json:"model_version"`
	CodebookVersion string       `json:"codebook_version"`
	Columns         []string     `json:"columns"`
	Predictions     []Prediction `json:"predictions"`
	// Explanation covers the first prediction; nil for an empty batch
	Explanation *Explanation `json:"explanation,omitempty"`
}

// ManualResult is the outcome of scoring one hand-entered transaction
type ManualResult struct {
	ID              uuid.UUID    `json:"id"`
	ScoredAt        time.Time    `json:"scored_at"`
	ModelVersion    string       `json:"model_version"`
	CodebookVersion string       `json:"codebook_version"`
	Prediction      Prediction   `json:"prediction"`
	Explanation     *Explanation `json:"explanation"`
}
