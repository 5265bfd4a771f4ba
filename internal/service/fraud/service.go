package fraud

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/model"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/telemetry"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
)

// service implements the Service interface
type service struct {
	scorer       Scorer
	explainer    Explainer
	modelVersion string
	metrics      *metrics.Registry
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures the service
type Option func(*service)

// WithMetrics records scoring metrics into r
func WithMetrics(r *metrics.Registry) Option {
	return func(s *service) { s.metrics = r }
}

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *service) { s.logger = l }
}

// WithModelVersion labels results with the loaded model version
func WithModelVersion(v string) Option {
	return func(s *service) { s.modelVersion = v }
}

// WithClock overrides the result timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new fraud scoring service
func NewService(scorer Scorer, explainer Explainer, opts ...Option) Service {
	s := &service{
		scorer:    scorer,
		explainer: explainer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "fraud")
	return s
}

func (s *service) ModelVersion() string {
	return s.modelVersion
}

// ScoreBatch builds features for the batch, scores every row and explains
// the first row of the time-sorted table.
func (s *service) ScoreBatch(ctx context.Context, source string, txns []transaction.Transaction) (*BatchResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "fraud.ScoreBatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("fraud.source", source),
		attribute.Int("fraud.batch_size", len(txns)),
	)

	start := time.Now()
	table, probs, err := s.score(ctx, txns)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &BatchResult{
		ID:              uuid.New(),
		ScoredAt:        s.now(),
		ModelVersion:    s.modelVersion,
		CodebookVersion: transaction.CodebookVersion,
		Columns:         features.Columns(),
		Predictions:     predictions(table, probs),
	}

	if table.Len() > 0 {
		exp, err := s.explain(ctx, table.Rows[0], BatchTopK)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		result.Explanation = exp
		s.metrics.ObserveExplanation(source)
	}

	s.metrics.ObserveScoring(source, probs, time.Since(start))
	s.logger.InfoContext(ctx, "batch scored",
		"result_id", result.ID,
		"source", source,
		"rows", table.Len(),
		"duration", time.Since(start),
	)
	return result, nil
}

// ScoreManual scores a single transaction. With no history the velocity
// counts are 1 and the device is always new.
func (s *service) ScoreManual(ctx context.Context, source string, tx transaction.Transaction) (*ManualResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "fraud.ScoreManual")
	defer span.End()
	span.SetAttributes(attribute.String("fraud.source", source))

	start := time.Now()
	table, probs, err := s.score(ctx, []transaction.Transaction{tx})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	exp, err := s.explain(ctx, table.Rows[0], ManualTopK)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.ObserveExplanation(source)
	s.metrics.ObserveScoring(source, probs, time.Since(start))

	result := &ManualResult{
		ID:              uuid.New(),
		ScoredAt:        s.now(),
		ModelVersion:    s.modelVersion,
		CodebookVersion: transaction.CodebookVersion,
		Prediction:      predictions(table, probs)[0],
		Explanation:     exp,
	}
	span.SetAttributes(attribute.Float64("fraud.probability", result.Prediction.Probability))
	s.logger.InfoContext(ctx, "manual transaction scored",
		"result_id", result.ID,
		"probability", result.Prediction.Probability,
		"severity", result.Prediction.Severity,
	)
	return result, nil
}

func (s *service) score(ctx context.Context, txns []transaction.Transaction) (*features.Table, []float64, error) {
	table, err := features.Build(txns)
	if err != nil {
		s.metrics.ObserveBuildError(errorType(err))
		s.logger.WarnContext(ctx, "feature build rejected batch", "error", err)
		return nil, nil, err
	}
	if table.Len() == 0 {
		return table, []float64{}, nil
	}

	probs, err := s.scorer.Predict(table.Matrix())
	if err != nil {
		s.logger.ErrorContext(ctx, "model scoring failed", "error", err)
		code := "SCORING_FAILED"
		if stderrors.Is(err, model.ErrSchemaMismatch) {
			code = "FEATURE_WIDTH_MISMATCH"
		}
		return nil, nil, errors.NewModelError(code, "model could not score the batch").WithCause(err)
	}
	if len(probs) != table.Len() {
		return nil, nil, errors.NewInternalError(
			fmt.Sprintf("model returned %d scores for %d rows", len(probs), table.Len()))
	}
	return table, probs, nil
}

func (s *service) explain(ctx context.Context, row features.Row, k int) (*Explanation, error) {
	_, span := telemetry.Tracer().Start(ctx, "fraud.Explain")
	defer span.End()

	attr, err := s.explainer.Explain(row.Vector())
	if err != nil {
		telemetry.RecordError(span, err)
		if stderrors.Is(err, model.ErrSchemaMismatch) {
			return nil, errors.NewSchemaError("EXPLAINER_SCHEMA_MISMATCH",
				"explainer and model disagree on the feature schema").WithCause(err)
		}
		return nil, errors.NewModelError("EXPLANATION_FAILED", "could not explain prediction").WithCause(err)
	}

	return &Explanation{
		SourceIndex:  row.SourceIndex,
		BaseValue:    attr.BaseValue,
		Attributions: TopAttributions(features.Columns(), attr.Values, k),
	}, nil
}

func predictions(table *features.Table, probs []float64) []Prediction {
	out := make([]Prediction, table.Len())
	for i, row := range table.Rows {
		out[i] = Prediction{
			Features:    row,
			Probability: probs[i],
			Severity:    SeverityFor(probs[i]),
		}
	}
	return out
}

func errorType(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return string(errors.ErrorTypeInternal)
}
