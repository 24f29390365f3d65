// Package sales turns a raw sales export into report metrics: order counts,
// units, revenue, the top product / attribution source / payment method, a
// refund report, and pivot tables over a chosen dimension.
//
// Data flows one way:
//
//	Dataset → Normalize → Partition → {Aggregate, Pivot, SummarizeRefunds} → TopOne → Summary
//
// Every function here is pure: identical input gives identical output and
// nothing is cached between calls.
package sales

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/schema"
)

// Row is one raw row of the export, keyed by header. Values are strings when
// read from CSV and JSON scalars when read from JSON.
type Row map[string]any

// Dataset is a raw export: header order plus rows.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Status is the classified order status.
type Status int

const (
	StatusOther Status = iota
	StatusCompleted
	StatusRefunded
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusRefunded:
		return "refunded"
	default:
		return "other"
	}
}

// OrderRecord is one normalized order.
type OrderRecord struct {
	OrderID           string  `json:"order_id"`
	ProductLabel      string  `json:"product_label"`
	Product           string  `json:"product"`
	Quantity          int     `json:"quantity"`
	Status            Status  `json:"-"`
	RawStatus         string  `json:"status"`
	NetAmount         float64 `json:"net_amount"`
	PaymentMethod     string  `json:"payment_method"`
	AttributionSource string  `json:"attribution_source"`
}

// StatusKey is the value the status dimension groups on: the canonical name
// for recognized statuses, the source token for everything else.
func (r OrderRecord) StatusKey() string {
	if r.Status == StatusOther {
		return r.RawStatus
	}
	return r.Status.String()
}

// ============================================================================
// DIMENSIONS
// ============================================================================

// Dimension is a grouping key for pivots and top-N rankings.
type Dimension string

const (
	DimProduct           Dimension = "product"
	DimPaymentMethod     Dimension = "payment_method"
	DimAttributionSource Dimension = "attribution_source"
	DimStatus            Dimension = "status"
)

// Dimensions lists every supported dimension.
var Dimensions = []Dimension{DimProduct, DimPaymentMethod, DimAttributionSource, DimStatus}

// ErrUnknownDimension is returned for a dimension outside Dimensions.
var ErrUnknownDimension = errors.New("unknown dimension")

// ParseDimension accepts a dimension name in any case or separator style
// ("Payment Method", "payment-method").
func ParseDimension(s string) (Dimension, error) {
	key := Dimension(schema.HeaderKey(s))
	if err := key.Validate(); err != nil {
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDimension, s, dimensionList())
	}
	return key, nil
}

// Validate returns ErrUnknownDimension when d is not supported.
func (d Dimension) Validate() error {
	for _, known := range Dimensions {
		if d == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownDimension, string(d))
}

func dimensionList() string {
	names := make([]string, len(Dimensions))
	for i, d := range Dimensions {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// Measure keys exposed through the record view.
const (
	MeasureQuantity  = "quantity"
	MeasureNetAmount = "net_amount"
)

// orderAdapter exposes OrderRecord fields to the engine without copying.
var orderAdapter = engine.NewDomainAdapter[OrderRecord]().
	Dimension(string(DimProduct), func(r OrderRecord) string { return r.Product }).
	Dimension(string(DimPaymentMethod), func(r OrderRecord) string { return r.PaymentMethod }).
	Dimension(string(DimAttributionSource), func(r OrderRecord) string { return r.AttributionSource }).
	Dimension(string(DimStatus), OrderRecord.StatusKey).
	Dimension("order_id", func(r OrderRecord) string { return r.OrderID }).
	Measure(MeasureQuantity, func(r OrderRecord) float64 { return float64(r.Quantity) }).
	Measure(MeasureNetAmount, func(r OrderRecord) float64 { return r.NetAmount })

// View binds records to an engine.RecordView.
func View(records []OrderRecord) engine.RecordView {
	return orderAdapter.Bind(records)
}
