package values

import (
	"fmt"
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month label in YYYY-MM form.
type Month string

// MonthOf returns the month label of t in t's own location.
func MonthOf(t time.Time) Month {
	return Month(t.Format(monthLayout))
}

// ParseMonth validates a YYYY-MM label.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return string(m)
}
