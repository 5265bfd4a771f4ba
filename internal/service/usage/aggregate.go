package usage

import (
	"sort"

	domain "github.com/davidleathers/cnp-fraud-console/internal/domain/usage"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/values"
)

// DistinctMonths returns every month with at least one entry, most recent first.
func DistinctMonths(entries []domain.Entry) []values.Month {
	seen := make(map[values.Month]struct{})
	var months []values.Month
	for _, e := range entries {
		m := e.Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	// YYYY-MM sorts lexically in calendar order.
	sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })
	return months
}

// FilterMonth keeps entries whose timestamp falls in month, newest first.
// Entries with equal timestamps keep log order.
func FilterMonth(entries []domain.Entry, month values.Month) []domain.Entry {
	out := []domain.Entry{}
	for _, e := range entries {
		if e.Month() == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Summarize sums transactions per client. Summaries are ordered by total
// descending, then client id.
func Summarize(entries []domain.Entry) []domain.ClientSummary {
	totals := make(map[string]int64)
	for _, e := range entries {
		totals[e.ClientID] += e.Transactions
	}

	out := make([]domain.ClientSummary, 0, len(totals))
	for client, total := range totals {
		out = append(out, domain.ClientSummary{
			ClientID:          client,
			TotalTransactions: total,
			OverQuota:         domain.IsOverQuota(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTransactions != out[j].TotalTransactions {
			return out[i].TotalTransactions > out[j].TotalTransactions
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}
