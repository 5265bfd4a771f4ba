package usage

import (
	"context"

	"github.com/stretchr/testify/mock"

	domain "github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) LoadEntries(ctx context.Context) ([]domain.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}
