package fraud

import (
	"github.com/stretchr/testify/mock"

	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/model"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Predict(rows [][]float64) ([]float64, error) {
	args := m.Called(rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

type mockExplainer struct {
	mock.Mock
}

func (m *mockExplainer) Explain(row []float64) (*model.Attribution, error) {
	args := m.Called(row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attribution), args.Error(1)
}
