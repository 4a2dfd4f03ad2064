package competition

import (
	"cmp"
	"slices"
)

// StandingsOrder returns record indices ordered by descending points. The sort
// is stable, so records with equal points keep their collection order.
func StandingsOrder(points []int) []int {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(points[b], points[a])
	})

	return order
}

// Ranks returns the 1-based rank of every record, aligned with the input.
// Ranks are positions, not tiers: two records with equal points still get
// different ranks, the earlier one in the collection ranking higher.
func Ranks(records []DistributorRecord, cfg PointConfig) []int {
	points := make([]int, len(records))
	for i, r := range records {
		points[i] = Points(r, cfg)
	}

	ranks := make([]int, len(records))
	for pos, idx := range StandingsOrder(points) {
		ranks[idx] = pos + 1
	}
	return ranks
}
