package sales

import (
	"go.uber.org/zap"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/schema"
)

// ============================================================================
// PIPELINE — Dataset → Summary
// ============================================================================

// TopProduct is the best-selling product by units.
type TopProduct struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

// TopAttribution is the attribution source with the most completed orders.
type TopAttribution struct {
	Name       string `json:"name"`
	OrderCount int    `json:"order_count"`
}

// TopPayment is the payment method with the most completed orders.
type TopPayment struct {
	Name         string  `json:"name"`
	TotalRevenue float64 `json:"total_revenue"`
	OrderCount   int     `json:"order_count"`
}

// Summary is the report computed from one dataset snapshot. Nil Top* fields
// mean "not available" (no completed orders).
type Summary struct {
	TotalRows       int     `json:"total_rows"`
	SuccessfulCount int     `json:"successful_count"`
	RefundedCount   int     `json:"refunded_count"`
	OtherCount      int     `json:"other_count"`
	TotalUnits      int     `json:"total_units"`
	TotalRevenue    float64 `json:"total_revenue"`

	TopProduct           *TopProduct     `json:"top_product"`
	TopAttributionSource *TopAttribution `json:"top_attribution_source"`
	TopPaymentMethod     *TopPayment     `json:"top_payment_method"`

	Refunds RefundReport `json:"refund_report"`
}

// Summarize builds a Summary from normalized records.
func Summarize(records []OrderRecord) *Summary {
	s, _ := summarize(PartitionRecords(records))
	return s
}

// summarize also returns the completed-order aggregate so callers can rank
// it without partitioning again.
func summarize(part Partition) (*Summary, Aggregate) {
	agg := AggregateRecords(part.Completed)

	s := &Summary{
		TotalRows:       part.Total(),
		SuccessfulCount: agg.Count,
		RefundedCount:   len(part.Refunded),
		OtherCount:      len(part.Other),
		TotalUnits:      agg.TotalUnits,
		TotalRevenue:    agg.TotalRevenue,
		Refunds:         SummarizeRefunds(part.Refunded),
	}

	if top, ok := TopOne(agg.GroupBy(DimProduct), RankUnits); ok {
		s.TopProduct = &TopProduct{Name: top.Key, Units: top.Units}
	}
	if top, ok := TopOne(agg.GroupBy(DimAttributionSource), RankCount); ok {
		s.TopAttributionSource = &TopAttribution{Name: top.Key, OrderCount: top.Count}
	}
	if top, ok := TopOne(agg.GroupBy(DimPaymentMethod), RankCount); ok {
		s.TopPaymentMethod = &TopPayment{Name: top.Key, TotalRevenue: top.Revenue, OrderCount: top.Count}
	}
	return s, agg
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// Pipeline runs the normalizer and report builders under one schema.
// It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	cfg        schema.Config
	normalizer *Normalizer
	log        *zap.Logger
}

// NewPipeline validates cfg and builds a pipeline.
func NewPipeline(cfg schema.Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:        cfg,
		normalizer: NewNormalizer(cfg),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the schema the pipeline runs with.
func (p *Pipeline) Config() schema.Config { return p.cfg }

// Normalize converts the dataset into records and logs unrecognized statuses.
func (p *Pipeline) Normalize(ds Dataset) ([]OrderRecord, error) {
	records, err := p.normalizer.Normalize(ds)
	if err != nil {
		p.log.Warn("dataset rejected", zap.Error(err))
		return nil, err
	}
	p.log.Debug("dataset normalized",
		zap.Int("input_rows", len(ds.Rows)),
		zap.Int("records", len(records)),
		zap.Int("blank_rows", len(ds.Rows)-len(records)))
	return records, nil
}

// Summarize normalizes ds and computes its Summary.
func (p *Pipeline) Summarize(ds Dataset) (*Summary, error) {
	records, err := p.Normalize(ds)
	if err != nil {
		return nil, err
	}
	s, _ := p.summarize(records)
	return s, nil
}

// Report normalizes ds once and returns its Summary together with the top n
// completed-order groups of dim ranked by the given measure.
func (p *Pipeline) Report(ds Dataset, dim Dimension, by RankBy, n int) (*Summary, []GroupStat, error) {
	if err := dim.Validate(); err != nil {
		return nil, nil, err
	}
	records, err := p.Normalize(ds)
	if err != nil {
		return nil, nil, err
	}
	s, agg := p.summarize(records)
	return s, agg.Rank(dim, by, n), nil
}

func (p *Pipeline) summarize(records []OrderRecord) (*Summary, Aggregate) {
	part := PartitionRecords(records)
	s, agg := summarize(part)
	if len(part.Other) > 0 {
		p.log.Warn("rows with unrecognized status excluded from metrics",
			zap.Int("count", len(part.Other)),
			zap.Strings("statuses", engine.UniqueValues(View(part.Other), string(DimStatus))))
	}
	p.log.Debug("summary computed",
		zap.Int("successful", s.SuccessfulCount),
		zap.Int("refunded", s.RefundedCount),
		zap.Int("units", s.TotalUnits),
		zap.Float64("revenue", s.TotalRevenue))
	return s, agg
}

// Pivot normalizes ds and pivots every record by dim after applying filters,
// ordering rows by order.
func (p *Pipeline) Pivot(ds Dataset, dim Dimension, filters engine.Filters, order PivotOrder) ([]PivotRow, error) {
	records, err := p.Normalize(ds)
	if err != nil {
		return nil, err
	}
	rows, err := PivotSorted(records, dim, filters, order)
	if err != nil {
		return nil, err
	}
	p.log.Debug("pivot computed",
		zap.String("dimension", string(dim)),
		zap.String("sort", string(order)),
		zap.Int("rows", len(rows)))
	return rows, nil
}
