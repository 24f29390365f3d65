package sales

import (
	"github.com/spektr-org/salespulse/engine"
)

// ============================================================================
// AGGREGATOR — Scalar totals and per-dimension sums over completed orders
// ============================================================================

// Aggregate holds the totals of a record set. Build it with AggregateRecords over
// completed records only.
type Aggregate struct {
	Count        int     `json:"count"`
	TotalUnits   int     `json:"total_units"`
	TotalRevenue float64 `json:"total_revenue"`

	view engine.RecordView
}

// GroupStat is one row of a grouped aggregation.
type GroupStat struct {
	Key     string  `json:"key"`
	Units   int     `json:"units"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// AggregateRecords totals the records. Zero records yield a zero Aggregate.
func AggregateRecords(records []OrderRecord) Aggregate {
	view := View(records)
	units := 0
	for _, r := range records {
		units += r.Quantity
	}
	return Aggregate{
		Count:        view.Len(),
		TotalUnits:   units,
		TotalRevenue: engine.SumMeasure(view, MeasureNetAmount),
		view:         view,
	}
}

// GroupBy sums units, revenue, and rows per distinct value of dim, in the
// order each value was first seen. Unknown dimensions and empty aggregates
// yield an empty slice.
func (a Aggregate) GroupBy(dim Dimension) []GroupStat {
	if a.view == nil || dim.Validate() != nil {
		return []GroupStat{}
	}
	return groupStats(engine.GroupAndAggregate(a.view, string(dim), MeasureNetAmount, engine.AggSum, engine.SortNone, 0))
}

// Rank groups the aggregate by dim and keeps the top n ranked by the given
// measure. n <= 0 keeps every group.
func (a Aggregate) Rank(dim Dimension, by RankBy, n int) []GroupStat {
	if a.view == nil || dim.Validate() != nil {
		return []GroupStat{}
	}
	return groupStats(engine.GroupAndAggregate(a.view, string(dim), by.measure(), by.aggregation(), by.sortMode(), n))
}

func groupStats(groups []engine.Group) []GroupStat {
	stats := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		units := 0
		for i := 0; i < g.View.Len(); i++ {
			units += int(g.View.Measure(i, MeasureQuantity))
		}
		stats = append(stats, GroupStat{
			Key:     g.Key,
			Units:   units,
			Revenue: g.Sum(MeasureNetAmount),
			Count:   g.Count,
		})
	}
	return stats
}
