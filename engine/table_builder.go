package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from aggregated Groups
// ============================================================================

// TableSpec names the columns of an aggregated table.
type TableSpec struct {
	Title      string
	Dimension  string // group column label source
	ValueLabel string // e.g. "Revenue"; empty → "Value"
	Unit       string // currency/unit prefix for the summary total
}

// BuildTable produces one row per group (label, value, count) plus a total
// summary. Rows keep the order of groups.
func BuildTable(spec TableSpec, groups []Group) *TableData {
	if len(groups) == 0 {
		return &TableData{
			Title:   spec.Title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	groupLabel := "Group"
	if spec.Dimension != "" {
		groupLabel = LabelForDimension(spec.Dimension)
	}
	valueLabel := spec.ValueLabel
	if valueLabel == "" {
		valueLabel = "Value"
	}

	columns := []Column{
		{Key: "group", Label: groupLabel, Type: "text", Align: "left"},
		{Key: "value", Label: valueLabel, Type: "currency", Align: "right"},
		{Key: "count", Label: "Count", Type: "number", Align: "center"},
	}

	rows := make([][]string, 0, len(groups))
	var totalValue float64
	var totalCount int

	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			strconv.FormatFloat(g.Value, 'f', 2, 64),
			strconv.Itoa(g.Count),
		})
		totalValue += g.Value
		totalCount += g.Count
	}

	return &TableData{
		Title:   spec.Title,
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: "Total",
			Values: map[string]string{
				"value": FormatCurrency(totalValue, spec.Unit),
				"count": FormatInt(totalCount),
			},
		},
	}
}
