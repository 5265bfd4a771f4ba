package usage

import (
	"context"

	domain "github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// Service defines the usage dashboard service interface
type Service interface {
	// Months lists the months present in the log, most recent first
	Months(ctx context.Context) ([]values.Month, error)
	// Report aggregates one month; an empty month selects the most recent
	Report(ctx context.Context, month string) (*Report, error)
}

// Repository loads the raw usage log
type Repository interface {
	LoadEntries(ctx context.Context) ([]domain.Entry, error)
}
