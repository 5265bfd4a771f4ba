package fraud

// Risk score thresholds
const (
	// RiskScoreHigh and above is reported as critical
	RiskScoreHigh = 0.8

	// RiskScoreMLAnomalyThreshold and above is reported as high
	RiskScoreMLAnomalyThreshold = 0.7

	// RiskScoreMedium indicates medium risk
	RiskScoreMedium = 0.5

	// RiskScoreLow indicates low risk
	RiskScoreLow = 0.3
)

// Explanation sizes
const (
	// BatchTopK is how many attributions the batch view shows for its first row
	BatchTopK = 10

	// ManualTopK is how many attributions the manual entry view shows
	ManualTopK = 5
)
