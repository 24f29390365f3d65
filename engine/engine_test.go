package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FIXTURES
// ============================================================================

type line struct {
	Product string
	Payment string
	Qty     float64
	Amount  float64
}

var lineAdapter = NewDomainAdapter[line]().
	Dimension("product", func(l line) string { return l.Product }).
	Dimension("payment_method", func(l line) string { return l.Payment }).
	Measure("quantity", func(l line) float64 { return l.Qty }).
	Measure("net_amount", func(l line) float64 { return l.Amount })

func sampleView() RecordView {
	return lineAdapter.Bind([]line{
		{"Mug", "card", 2, 20},
		{"Hat", "cash", 1, 50},
		{"Mug", "Cash", 3, 30},
		{"Pen", "card", 5, 5},
	})
}

func groupKeys(groups []Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

// ============================================================================
// AGGREGATION TESTS
// ============================================================================

func TestGroupByKeepsFirstSeenOrder(t *testing.T) {
	groups := GroupBy(sampleView(), "product")
	assert.Equal(t, []string{"Mug", "Hat", "Pen"}, groupKeys(groups))
	assert.Equal(t, 2, groups[0].View.Len())
}

func TestGroupAndAggregate(t *testing.T) {
	groups := GroupAndAggregate(sampleView(), "product", "net_amount", AggSum, SortValueDesc, 0)
	require.Len(t, groups, 3)
	assert.Equal(t, []string{"Hat", "Mug", "Pen"}, groupKeys(groups))
	assert.Equal(t, 50.0, groups[1].Value)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, 5.0, groups[1].Sum("quantity"), "every measure is summed")
	assert.Equal(t, 0.0, groups[1].Sum("missing"))
}

func TestGroupAndAggregateModes(t *testing.T) {
	view := sampleView()
	tests := []struct {
		agg  string
		want float64
	}{
		{AggSum, 50},
		{AggCount, 2},
	}
	for _, tt := range tests {
		t.Run(tt.agg, func(t *testing.T) {
			groups := GroupAndAggregate(view, "product", "net_amount", tt.agg, SortLabelAsc, 0)
			require.Equal(t, "Mug", groups[1].Key)
			assert.Equal(t, tt.want, groups[1].Value)
		})
	}
}

func TestGroupAndAggregateCountOrder(t *testing.T) {
	groups := GroupAndAggregate(sampleView(), "product", "", AggCount, SortCountDesc, 0)
	assert.Equal(t, []string{"Mug", "Hat", "Pen"}, groupKeys(groups))
	assert.Equal(t, 2.0, groups[0].Value)
	assert.Equal(t, 50.0, groups[0].Sum("net_amount"))
}

func TestGroupAndAggregateAllAndLimit(t *testing.T) {
	all := GroupAndAggregate(sampleView(), "", "net_amount", AggSum, SortNone, 0)
	require.Len(t, all, 1)
	assert.Equal(t, 105.0, all[0].Value)
	assert.Equal(t, 4, all[0].Count)

	top := GroupAndAggregate(sampleView(), "product", "quantity", AggSum, SortValueDesc, 1)
	assert.Equal(t, []string{"Mug"}, groupKeys(top))

	assert.Nil(t, GroupAndAggregate(lineAdapter.Bind(nil), "product", "net_amount", AggSum, SortValueDesc, 0))
}

func TestSortGroupsBreaksTiesByKey(t *testing.T) {
	groups := []Group{
		{Key: "b", Value: 1, Count: 2},
		{Key: "c", Value: 3, Count: 1},
		{Key: "a", Value: 1, Count: 2},
	}
	SortGroups(groups, SortValueDesc)
	assert.Equal(t, []string{"c", "a", "b"}, groupKeys(groups))

	SortGroups(groups, SortValueAsc)
	assert.Equal(t, []string{"a", "b", "c"}, groupKeys(groups))

	SortGroups(groups, SortCountDesc)
	assert.Equal(t, []string{"a", "b", "c"}, groupKeys(groups))

	SortGroups(groups, SortLabelAsc)
	assert.Equal(t, []string{"a", "b", "c"}, groupKeys(groups))
}

func TestSumMeasureOnEmptyView(t *testing.T) {
	assert.Equal(t, 0.0, SumMeasure(lineAdapter.Bind(nil), "net_amount"))
}

func TestUniqueValues(t *testing.T) {
	assert.Equal(t, []string{"card", "cash", "Cash"}, UniqueValues(sampleView(), "payment_method"))
	assert.Nil(t, UniqueValues(sampleView(), "missing"))
}

// ============================================================================
// FILTER TESTS
// ============================================================================

func TestApplyFilters(t *testing.T) {
	view := sampleView()

	assert.Same(t, view, ApplyFilters(view, Filters{}))

	cash := ApplyFilters(view, Filters{Dimensions: map[string][]string{"payment_method": {" CASH "}}})
	assert.Equal(t, 2, cash.Len())

	both := ApplyFilters(view, Filters{Dimensions: map[string][]string{
		"payment_method": {"cash"},
		"product":        {"mug", "pen"},
	}})
	require.Equal(t, 1, both.Len())
	assert.Equal(t, 30.0, both.Measure(0, "net_amount"))

	none := ApplyFilters(view, Filters{Dimensions: map[string][]string{"product": {"Lamp"}}})
	assert.Equal(t, 0, none.Len())
}

func TestFiltersHelpers(t *testing.T) {
	f := Filters{Dimensions: map[string][]string{"product": {}, "status": {"completed"}}}
	assert.False(t, f.IsEmpty())
	assert.True(t, Filters{}.IsEmpty())
}

// ============================================================================
// VIEW TESTS
// ============================================================================

type order struct {
	Product string
	Amount  float64
}

func TestDomainAdapter(t *testing.T) {
	adapter := NewDomainAdapter[order]().
		Dimension("product", func(o order) string { return o.Product }).
		Measure("amount", func(o order) float64 { return o.Amount })

	view := adapter.Bind([]order{{"Mug", 10}, {"Hat", 4}, {"Mug", 1}})
	assert.Equal(t, 3, view.Len())
	assert.Equal(t, []string{"product"}, view.DimensionKeys())
	assert.Equal(t, []string{"amount"}, view.MeasureKeys())
	assert.Equal(t, "", view.Dimension(0, "missing"))
	assert.Equal(t, "", view.Dimension(9, "product"))
	assert.Equal(t, 0.0, view.Measure(-1, "amount"))

	groups := GroupAndAggregate(view, "product", "amount", AggSum, SortValueDesc, 0)
	assert.Equal(t, []string{"Mug", "Hat"}, groupKeys(groups))
	assert.Equal(t, 11.0, groups[0].Value)
}

func TestSubViewBounds(t *testing.T) {
	sub := newSubView(sampleView(), []int{2})
	assert.Equal(t, "Mug", sub.Dimension(0, "product"))
	assert.Equal(t, "", sub.Dimension(1, "product"))
	assert.Equal(t, 0.0, sub.Measure(1, "net_amount"))
}

// ============================================================================
// BUILDER TESTS
// ============================================================================

func TestBuildTable(t *testing.T) {
	groups := GroupAndAggregate(sampleView(), "payment_method", "net_amount", AggSum, SortValueDesc, 0)
	table := BuildTable(TableSpec{Title: "Revenue", Dimension: "payment_method", ValueLabel: "Revenue", Unit: "USD"}, groups)

	assert.Equal(t, []string{"Payment method", "Revenue", "Count"}, table.Headers())
	assert.Equal(t, []string{"cash", "50.00", "1"}, table.Rows[0])
	require.NotNil(t, table.Summary)
	assert.Equal(t, "USD 105.00", table.Summary.Values["value"])
	assert.Equal(t, "4", table.Summary.Values["count"])

	empty := BuildTable(TableSpec{Title: "x"}, nil)
	assert.Empty(t, empty.Rows)
	assert.Nil(t, empty.Summary)
}

func TestBuildChart(t *testing.T) {
	groups := []Group{{Key: "a", Label: "a", Value: 1.005}, {Key: "b", Label: "b", Value: 2}}

	bar := BuildChart(ChartSpec{Title: "Revenue", Dimension: "product"}, groups)
	require.NotNil(t, bar)
	assert.Equal(t, "bar", bar.ChartType)
	assert.Equal(t, "Product", bar.XAxis)
	assert.Equal(t, "Revenue", bar.Series[0].Name)
	assert.Len(t, bar.Colors, 1)
	assert.True(t, bar.ShowGrid)

	pie := BuildChart(ChartSpec{Type: "pie"}, groups)
	assert.Len(t, pie.Colors, 2)
	assert.Equal(t, "Value", pie.Series[0].Name)
	assert.True(t, pie.ShowLegend)

	empty := BuildChart(ChartSpec{Title: "Revenue", Dimension: "product"}, nil)
	require.NotNil(t, empty)
	assert.Equal(t, "bar", empty.ChartType)
	assert.Equal(t, "Product", empty.XAxis)
	assert.NotNil(t, empty.Series)
	assert.Empty(t, empty.Series)
}

// ============================================================================
// FORMAT TESTS
// ============================================================================

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "USD 1,234.50", FormatCurrency(1234.5, "USD"))
	assert.Equal(t, "0.00", FormatCurrency(0, ""))
	assert.Equal(t, "-1,000,000.01", FormatCurrency(-1000000.01, ""))
	assert.Equal(t, "0.00", FormatCurrency(-0.001, ""))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "-12", FormatInt(-12))
	assert.Equal(t, 2.35, RoundTo2(2.346))
	assert.Equal(t, "Attribution source", LabelForDimension("attribution_source"))
	assert.Equal(t, "", LabelForDimension(""))
}
