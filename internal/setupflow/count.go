package setupflow

import "slices"

// DefaultCountOptions are the question counts offered at CountSelection.
var DefaultCountOptions = []int{6, 10, 15}

type CountOption struct {
	Count      int  `json:"count"`
	Selectable bool `json:"selectable"`
}

// CountSelectable reports whether count fits the pack and gives every
// player at least one question.
func CountSelectable(count, playerCount, capacity int) bool {
	if count <= 0 || playerCount <= 0 {
		return false
	}
	return count <= capacity && count/playerCount >= 1
}

// CountOptions lists candidates in ascending order with their selectability.
func CountOptions(candidates []int, playerCount, capacity int) []CountOption {
	sorted := slices.Clone(candidates)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	opts := make([]CountOption, 0, len(sorted))
	for _, c := range sorted {
		opts = append(opts, CountOption{
			Count:      c,
			Selectable: CountSelectable(c, playerCount, capacity),
		})
	}
	return opts
}

// DefaultCount returns the smallest selectable candidate. The bool is false
// when no candidate qualifies; callers must not assume a default exists.
func DefaultCount(candidates []int, playerCount, capacity int) (int, bool) {
	for _, opt := range CountOptions(candidates, playerCount, capacity) {
		if opt.Selectable {
			return opt.Count, true
		}
	}
	return 0, false
}
