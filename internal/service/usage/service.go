package usage

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	domain "github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/telemetry"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
)

// Report outcomes recorded in metrics.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Report is the dashboard view for one month
type Report struct {
	Month             values.Month           `json:"month"`
	Months            []values.Month         `json:"months"`
	QuotaThreshold    int64                  `json:"quota_threshold"`
	TotalTransactions int64                  `json:"total_transactions"`
	Summaries         []domain.ClientSummary `json:"summaries"`
	Entries           []domain.Entry         `json:"entries"`
}

type service struct {
	repo    Repository
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewService creates a usage dashboard service reading from repo
func NewService(repo Repository, reg *metrics.Registry, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:    repo,
		metrics: reg,
		logger:  logger.With("component", "usage"),
	}
}

func (s *service) Months(ctx context.Context) ([]values.Month, error) {
	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctMonths(entries), nil
}

func (s *service) Report(ctx context.Context, month string) (*Report, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "usage.Report")
	defer span.End()

	var selected values.Month
	if month != "" {
		m, err := values.ParseMonth(month)
		if err != nil {
			return nil, errors.NewValidationError("INVALID_MONTH", err.Error())
		}
		selected = m
	}

	entries, err := s.repo.LoadEntries(ctx)
	if err != nil {
		if errors.IsType(err, errors.ErrorTypeMissingResource) {
			s.metrics.ObserveUsageReport(OutcomeEmpty)
		} else {
			s.metrics.ObserveUsageReport(OutcomeError)
			s.logger.ErrorContext(ctx, "usage log unreadable", "error", err)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	months := DistinctMonths(entries)
	if len(months) == 0 {
		s.metrics.ObserveUsageReport(OutcomeEmpty)
		return nil, errors.NewMissingResourceError("usage_log", "No usage logs found yet.")
	}
	if selected == "" {
		selected = months[0]
	}
	span.SetAttributes(attribute.String("usage.month", selected.String()))

	filtered := FilterMonth(entries, selected)
	report := &Report{
		Month:          selected,
		Months:         months,
		QuotaThreshold: domain.QuotaThreshold,
		Summaries:      Summarize(filtered),
		Entries:        filtered,
	}
	for _, e := range filtered {
		report.TotalTransactions += e.Transactions
	}

	s.metrics.ObserveUsageReport(OutcomeOK)
	s.logger.DebugContext(ctx, "usage report built",
		"month", selected,
		"clients", len(report.Summaries),
		"entries", len(filtered),
	)
	return report, nil
}
