package usage

import (
	"time"

	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// QuotaThreshold is the monthly transaction allowance per client. A total
// strictly above it is over quota.
const QuotaThreshold int64 = 5000

// Entry is one line of the externally written usage log.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	ClientID     string    `json:"client_id"`
	Source       string    `json:"source"`
	Transactions int64     `json:"transactions"`
}

// Month returns the calendar month the entry belongs to.
func (e Entry) Month() values.Month {
	return values.MonthOf(e.Timestamp)
}

// ClientSummary is the per-client total for one month.
type ClientSummary struct {
	ClientID          string `json:"client"`
	TotalTransactions int64  `json:"total_transactions"`
	OverQuota         bool   `json:"over_quota"`
}

// IsOverQuota reports whether total exceeds the monthly allowance.
func IsOverQuota(total int64) bool {
	return total > QuotaThreshold
}
