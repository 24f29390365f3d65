package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/sales"
)

// SummaryCSV writes the summary as metric,value rows. Amounts are plain
// decimals so spreadsheets can read them back.
func SummaryCSV(w io.Writer, s *sales.Summary) error {
	rows := [][]string{
		{"metric", "value"},
		{"total_rows", strconv.Itoa(s.TotalRows)},
		{"successful_count", strconv.Itoa(s.SuccessfulCount)},
		{"refunded_count", strconv.Itoa(s.RefundedCount)},
		{"other_count", strconv.Itoa(s.OtherCount)},
		{"total_units", strconv.Itoa(s.TotalUnits)},
		{"total_revenue", decimal(s.TotalRevenue)},
	}
	if s.TopProduct != nil {
		rows = append(rows,
			[]string{"top_product", s.TopProduct.Name},
			[]string{"top_product_units", strconv.Itoa(s.TopProduct.Units)})
	}
	if s.TopAttributionSource != nil {
		rows = append(rows,
			[]string{"top_attribution_source", s.TopAttributionSource.Name},
			[]string{"top_attribution_source_orders", strconv.Itoa(s.TopAttributionSource.OrderCount)})
	}
	if s.TopPaymentMethod != nil {
		rows = append(rows,
			[]string{"top_payment_method", s.TopPaymentMethod.Name},
			[]string{"top_payment_method_revenue", decimal(s.TopPaymentMethod.TotalRevenue)},
			[]string{"top_payment_method_orders", strconv.Itoa(s.TopPaymentMethod.OrderCount)})
	}
	rows = append(rows,
		[]string{"refund_total_value", decimal(s.Refunds.TotalValue)},
		[]string{"refund_order_ids", strings.Join(s.Refunds.OrderIDs, ";")})

	return writeAll(w, rows)
}

// PivotCSV writes pivot rows under a header named after the dimension.
func PivotCSV(w io.Writer, rows []sales.PivotRow, dim sales.Dimension) error {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, []string{string(dim), "count", "total_revenue"})
	for _, r := range rows {
		out = append(out, []string{r.Key, strconv.Itoa(r.Count), decimal(r.TotalRevenue)})
	}
	return writeAll(w, out)
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func decimal(v float64) string {
	return strconv.FormatFloat(engine.RoundTo2(v), 'f', 2, 64)
}
