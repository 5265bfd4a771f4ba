package values

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary column. Blank cells are treated as zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return dec, nil
}

// MustParseAmount parses an amount and panics on error (for constants/tests)
func MustParseAmount(s string) decimal.Decimal {
	dec, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return dec
}
