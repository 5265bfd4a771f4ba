package rest

import (
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
)

// ScoreBatchResponse is the API view of a scored upload
type ScoreBatchResponse struct {
	*fraud.BatchResult
	RowCount int `json:"row_count"`
	// Flagged counts predictions at or above the medium risk band
	Flagged int `json:"flagged"`
}

func newScoreBatchResponse(res *fraud.BatchResult) *ScoreBatchResponse {
	flagged := 0
	for _, p := range res.Predictions {
		if p.Probability >= fraud.RiskScoreMedium {
			flagged++
		}
	}
	return &ScoreBatchResponse{
		BatchResult: res,
		RowCount:    len(res.Predictions),
		Flagged:     flagged,
	}
}

// UsageMonthsResponse lists the months present in the usage log, newest first
type UsageMonthsResponse struct {
	Months []values.Month `json:"months"`
}
