package engine

import (
	"sort"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view) in first-seen
// order; sorting always breaks ties on the ascending group key so identical
// input yields identical output.
// ============================================================================

// Aggregation names understood by GroupAndAggregate.
const (
	AggSum   = "sum"
	AggCount = "count"
)

// Sort modes understood by SortGroups.
const (
	SortValueDesc = "value_desc"
	SortValueAsc  = "value_asc"
	SortCountDesc = "count_desc"
	SortLabelAsc  = "label_asc"
	SortNone      = ""
)

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
// An empty dimension collapses the view into a single "all" group.
func GroupAndAggregate(
	view RecordView,
	dimension string,
	measure string,
	aggregation string,
	sortBy string,
	limit int,
) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if dimension == "" {
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	} else {
		groups = GroupBy(view, dimension)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
	}

	// 3. Sort
	SortGroups(groups, sortBy)

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupBy partitions a view by the exact value of one dimension.
// Groups come back in the order their key was first seen.
func GroupBy(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	group.Sums = make(map[string]float64, len(group.View.MeasureKeys()))
	for _, key := range group.View.MeasureKeys() {
		group.Sums[key] = SumMeasure(group.View, key)
	}
	if group.Count == 0 {
		return
	}

	if aggregation == AggCount {
		group.Value = float64(group.Count)
		return
	}
	group.Value = group.Sums[measure]
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts aggregate groups by the specified sort mode.
// Value and count sorts fall back to ascending key on ties. An unknown or
// empty mode keeps grouping order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortValueDesc:
		SortGroupsDesc(groups, func(g Group) float64 { return g.Value })
	case SortValueAsc:
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Value != groups[j].Value {
				return groups[i].Value < groups[j].Value
			}
			return groups[i].Key < groups[j].Key
		})
	case SortCountDesc:
		SortGroupsDesc(groups, func(g Group) float64 { return float64(g.Count) })
	case SortLabelAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	}
}

// SortGroupsDesc orders groups by rank descending, then key ascending.
func SortGroupsDesc(groups []Group, rank func(Group) float64) {
	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := rank(groups[i]), rank(groups[j])
		if ri != rj {
			return ri > rj
		}
		return groups[i].Key < groups[j].Key
	})
}

// UniqueValues returns distinct non-empty values for a dimension across a view.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
