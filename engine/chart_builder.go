package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from aggregated Groups
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartSpec describes the chart a caller wants drawn over a grouping.
type ChartSpec struct {
	Type      string // "bar", "pie", "line"; empty → "bar"
	Title     string
	Dimension string // groups' dimension, used for the x-axis label
	YAxis     string
	Series    string // series name; empty → Title
}

// BuildChart produces a single-series ChartConfig. No groups yield a chart
// with its axes set and an empty series list.
func BuildChart(spec ChartSpec, groups []Group) *ChartConfig {
	chartType := spec.Type
	if chartType == "" {
		chartType = "bar"
	}

	if len(groups) == 0 {
		return &ChartConfig{
			ChartType:  chartType,
			Title:      spec.Title,
			XAxis:      LabelForDimension(spec.Dimension),
			YAxis:      spec.YAxis,
			Series:     []ChartSeries{},
			Colors:     []string{},
			ShowLegend: chartType == "pie",
			ShowGrid:   chartType != "pie",
		}
	}

	name := spec.Series
	if name == "" {
		name = spec.Title
	}
	if name == "" {
		name = "Value"
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{Label: g.Label, Value: RoundTo2(g.Value)})
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      spec.Title,
		XAxis:      LabelForDimension(spec.Dimension),
		YAxis:      spec.YAxis,
		Series:     []ChartSeries{{Name: name, Data: points}},
		ShowLegend: chartType == "pie",
		ShowGrid:   chartType != "pie",
	}

	// pie slices need one colour each, bars and lines one per series
	if chartType == "pie" {
		config.Colors = assignColors(len(points))
	} else {
		config.Colors = assignColors(len(config.Series))
	}
	return config
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
