package fraud

import (
	"math"
	"sort"
)

// TopAttributions pairs columns with values and keeps the k largest by
// magnitude. Ties keep column order. k <= 0 keeps everything.
func TopAttributions(columns []string, values []float64, k int) []Attribution {
	n := len(columns)
	if len(values) < n {
		n = len(values)
	}
	out := make([]Attribution, n)
	for i := 0; i < n; i++ {
		out[i] = Attribution{Feature: columns[i], Value: values[i]}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Value) > math.Abs(out[b].Value)
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
