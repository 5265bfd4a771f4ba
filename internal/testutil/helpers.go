package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestContext creates a context with timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// MustParse parses a string into the given type or fails the test
func MustParse[T any](t *testing.T, parser func(string) (T, error), value string) T {
	t.Helper()
	result, err := parser(value)
	require.NoError(t, err, "failed to parse %s", value)
	return result
}
