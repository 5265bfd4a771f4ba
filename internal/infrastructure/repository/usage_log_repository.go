package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/csvio"
)

// NoUsageLogsMessage is shown when the log is absent or holds no entries.
const NoUsageLogsMessage = "No usage logs found yet."

// UsageLogRepository reads the usage log from a flat CSV file written by
// another process. The file is re-read on every call.
type UsageLogRepository struct {
	path string
}

// NewUsageLogRepository creates a repository for the log at path
func NewUsageLogRepository(path string) *UsageLogRepository {
	return &UsageLogRepository{path: path}
}

// LoadEntries decodes every line of the log. A missing or empty log is a
// missing-resource error.
func (r *UsageLogRepository) LoadEntries(ctx context.Context) ([]usage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewMissingResourceError("usage_log", NoUsageLogsMessage)
		}
		return nil, errors.NewInternalError("could not open usage log").WithCause(err)
	}
	defer f.Close()

	entries, err := csvio.ReadUsageLog(f)
	if err != nil {
		return nil, fmt.Errorf("reading usage log %s: %w", r.path, err)
	}
	if len(entries) == 0 {
		return nil, errors.NewMissingResourceError("usage_log", NoUsageLogsMessage)
	}
	return entries, nil
}

// Ping reports whether the log location can be inspected. An absent file
// is not a failure.
func (r *UsageLogRepository) Ping(ctx context.Context) error {
	if _, err := os.Stat(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("usage log %s: %w", r.path, err)
	}
	return nil
}
