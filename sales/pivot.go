package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spektr-org/salespulse/engine"
)

// ============================================================================
// PIVOT BUILDER — Count and revenue per dimension value, across all statuses
// ============================================================================

// PivotRow is one line of a pivot table.
type PivotRow struct {
	Key          string  `json:"key"`
	Count        int     `json:"count"`
	TotalRevenue float64 `json:"total_revenue"`
}

// PivotOrder selects how pivot rows are ordered. Every order breaks ties on
// ascending key.
type PivotOrder string

const (
	PivotByRevenue    PivotOrder = "revenue"
	PivotByRevenueAsc PivotOrder = "revenue_asc"
	PivotByCount      PivotOrder = "count"
	PivotByLabel      PivotOrder = "label"
)

// ErrUnknownPivotOrder is returned for an order outside the PivotBy* values.
var ErrUnknownPivotOrder = errors.New("unknown pivot sort")

// ParsePivotOrder maps a user-supplied order name; empty means PivotByRevenue.
func ParsePivotOrder(s string) (PivotOrder, error) {
	switch o := PivotOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return PivotByRevenue, nil
	case PivotByRevenue, PivotByRevenueAsc, PivotByCount, PivotByLabel:
		return o, nil
	default:
		return "", fmt.Errorf("%w: %q (want revenue, revenue_asc, count or label)", ErrUnknownPivotOrder, s)
	}
}

func (o PivotOrder) sortMode() string {
	switch o {
	case PivotByRevenueAsc:
		return engine.SortValueAsc
	case PivotByCount:
		return engine.SortCountDesc
	case PivotByLabel:
		return engine.SortLabelAsc
	default:
		return engine.SortValueDesc
	}
}

// Pivot groups every record, whatever its status, by dim. Rows are ordered by
// revenue descending, then key ascending.
func Pivot(records []OrderRecord, dim Dimension) ([]PivotRow, error) {
	return PivotFiltered(records, dim, engine.Filters{})
}

// PivotFiltered narrows the records with case-insensitive dimension filters
// before pivoting. Filter keys must be known dimensions.
func PivotFiltered(records []OrderRecord, dim Dimension, filters engine.Filters) ([]PivotRow, error) {
	return PivotSorted(records, dim, filters, PivotByRevenue)
}

// PivotSorted is PivotFiltered with an explicit row order.
func PivotSorted(records []OrderRecord, dim Dimension, filters engine.Filters, order PivotOrder) ([]PivotRow, error) {
	if err := dim.Validate(); err != nil {
		return nil, err
	}
	for key := range filters.Dimensions {
		if err := Dimension(key).Validate(); err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}

	view := engine.ApplyFilters(View(records), filters)
	groups := engine.GroupAndAggregate(view, string(dim), MeasureNetAmount, engine.AggSum, order.sortMode(), 0)

	rows := make([]PivotRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, PivotRow{Key: g.Key, Count: g.Count, TotalRevenue: g.Value})
	}
	return rows, nil
}

// PivotTable renders pivot rows as a table with a revenue total.
func PivotTable(rows []PivotRow, dim Dimension, unit string) *engine.TableData {
	return engine.BuildTable(engine.TableSpec{
		Title:      "Revenue by " + engine.LabelForDimension(string(dim)),
		Dimension:  string(dim),
		ValueLabel: "Revenue",
		Unit:       unit,
	}, pivotGroups(rows))
}

// PivotChart renders pivot rows as a bar chart of revenue.
func PivotChart(rows []PivotRow, dim Dimension) *engine.ChartConfig {
	return engine.BuildChart(engine.ChartSpec{
		Type:      "bar",
		Title:     "Revenue by " + engine.LabelForDimension(string(dim)),
		Dimension: string(dim),
		YAxis:     "Revenue",
		Series:    "Revenue",
	}, pivotGroups(rows))
}

func pivotGroups(rows []PivotRow) []engine.Group {
	groups := make([]engine.Group, len(rows))
	for i, r := range rows {
		groups[i] = engine.Group{Key: r.Key, Label: r.Key, Value: r.TotalRevenue, Count: r.Count}
	}
	return groups
}
