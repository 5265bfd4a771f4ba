package fraud

import (
	"context"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/model"
)

// Service defines the fraud scoring service interface
type Service interface {
	// ScoreBatch scores an uploaded batch and explains its first row
	ScoreBatch(ctx context.Context, source string, txns []transaction.Transaction) (*BatchResult, error)
	// ScoreManual scores a single hand-entered transaction
	ScoreManual(ctx context.Context, source string, tx transaction.Transaction) (*ManualResult, error)
	// ModelVersion returns the version label of the loaded model
	ModelVersion() string
}

// Scorer produces fraud probabilities for model input rows, in row order
type Scorer interface {
	Predict(rows [][]float64) ([]float64, error)
}

// Explainer attributes a single model input row to its features
type Explainer interface {
	Explain(row []float64) (*model.Attribution, error)
}
