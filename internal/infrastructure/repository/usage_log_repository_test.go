package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/errors"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
	"github.com/davidleathers/cnp-fraud-console/internal/testutil"
	"github.com/davidleathers/cnp-fraud-console/internal/testutil/fixtures"
)

func TestUsageLogRepository_LoadEntries(t *testing.T) {
	ctx := testutil.TestContext(t)

	t.Run("reads every line", func(t *testing.T) {
		repo := NewUsageLogRepository(fixtures.WriteFile(t, "usage_log.csv", fixtures.UsageLog))
		entries, err := repo.LoadEntries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, testutil.MustParse(t, values.ParseTimestamp, "2024-01-03 09:00:00"), entries[0].Timestamp)
		assert.Equal(t, "acme", entries[0].ClientID)
		assert.EqualValues(t, 3000, entries[0].Transactions)
	})

	t.Run("missing file", func(t *testing.T) {
		repo := NewUsageLogRepository(filepath.Join(t.TempDir(), "usage_log.csv"))
		_, err := repo.LoadEntries(ctx)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeMissingResource))
		assert.Equal(t, NoUsageLogsMessage, err.Error())
		assert.NoError(t, repo.Ping(ctx))
	})

	t.Run("empty file", func(t *testing.T) {
		repo := NewUsageLogRepository(fixtures.WriteFile(t, "usage_log.csv", ""))
		_, err := repo.LoadEntries(ctx)
		assert.True(t, errors.IsType(err, errors.ErrorTypeMissingResource))
	})

	t.Run("malformed line fails whole load", func(t *testing.T) {
		repo := NewUsageLogRepository(fixtures.WriteFile(t, "usage_log.csv", fixtures.UsageLog+"2024-02-03,acme"))
		entries, err := repo.LoadEntries(ctx)
		assert.Nil(t, entries)
		assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		repo := NewUsageLogRepository(fixtures.WriteFile(t, "usage_log.csv", fixtures.UsageLog))
		_, err := repo.LoadEntries(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
