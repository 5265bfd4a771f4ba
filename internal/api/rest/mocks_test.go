package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
	"github.com/davidleathers/cnp-fraud-console/internal/service/usage"
)

// MockFraudService implements fraud.Service
type MockFraudService struct {
	mock.Mock
}

func (m *MockFraudService) ScoreBatch(ctx context.Context, source string, txns []transaction.Transaction) (*fraud.BatchResult, error) {
	args := m.Called(ctx, source, txns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.BatchResult), args.Error(1)
}

func (m *MockFraudService) ScoreManual(ctx context.Context, source string, tx transaction.Transaction) (*fraud.ManualResult, error) {
	args := m.Called(ctx, source, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fraud.ManualResult), args.Error(1)
}

func (m *MockFraudService) ModelVersion() string {
	return m.Called().String(0)
}

// MockUsageService implements usage.Service
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Months(ctx context.Context) ([]values.Month, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]values.Month), args.Error(1)
}

func (m *MockUsageService) Report(ctx context.Context, month string) (*usage.Report, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.Report), args.Error(1)
}

// stubModel implements ModelInfo
type stubModel struct {
	trees int
}

func (s stubModel) Version() string  { return "stub-1" }
func (s stubModel) NumTrees() int    { return s.trees }
func (s stubModel) NumFeatures() int { return 12 }

// stubPinger implements Pinger
type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }
