package features

import "time"

// rollingCounts returns, for every position i of the time-sorted batch, how
// many records with the same card fall in (times[i]-window, times[i]] at or
// before position i. Later records with an equal timestamp are not counted.
func rollingCounts(cards []string, times []time.Time, window time.Duration) []int {
	counts := make([]int, len(cards))

	byCard := make(map[string][]int)
	for i, card := range cards {
		byCard[card] = append(byCard[card], i)
	}

	for _, idx := range byCard {
		left := 0
		for right, pos := range idx {
			lower := times[pos].Add(-window)
			for !times[idx[left]].After(lower) {
				left++
			}
			counts[pos] = right - left + 1
		}
	}
	return counts
}

// firstOccurrence flags the first time each (card, device) pair is seen.
func firstOccurrence(cards, devices []string) []int {
	type pair struct{ card, device string }

	seen := make(map[pair]struct{}, len(cards))
	flags := make([]int, len(cards))
	for i := range cards {
		p := pair{cards[i], devices[i]}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		flags[i] = 1
	}
	return flags
}
