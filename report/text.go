package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/sales"
)

// ============================================================================
// TEXT REPORT
// ============================================================================
// Layout follows the dashboard: four metric cards, the three "top" lines,
// the refund block, then an optional leaderboard.
// ============================================================================

const notAvailable = "n/a"

// Text writes a human-readable summary. leaders may be nil.
func Text(w io.Writer, s *sales.Summary, leaders []sales.GroupStat, f *Formatter) error {
	if f == nil {
		f = NewFormatter("", "en")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SALES SUMMARY")
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Successful sales\t%s\n", f.Int(s.SuccessfulCount))
	fmt.Fprintf(tw, "Refunded sales\t%s\n", f.Int(s.RefundedCount))
	fmt.Fprintf(tw, "Units sold\t%s\n", f.Int(s.TotalUnits))
	fmt.Fprintf(tw, "Revenue\t%s\n", f.Money(s.TotalRevenue))
	if s.OtherCount > 0 {
		fmt.Fprintf(tw, "Other status\t%s of %s rows\n", f.Int(s.OtherCount), f.Int(s.TotalRows))
	}
	fmt.Fprintln(tw)

	product, attribution, payment := notAvailable, notAvailable, notAvailable
	if s.TopProduct != nil {
		product = fmt.Sprintf("%s (%s units)", s.TopProduct.Name, f.Int(s.TopProduct.Units))
	}
	if s.TopAttributionSource != nil {
		attribution = fmt.Sprintf("%s (%s orders)", s.TopAttributionSource.Name, f.Int(s.TopAttributionSource.OrderCount))
	}
	if s.TopPaymentMethod != nil {
		payment = fmt.Sprintf("%s (%s, %s orders)", s.TopPaymentMethod.Name,
			f.Money(s.TopPaymentMethod.TotalRevenue), f.Int(s.TopPaymentMethod.OrderCount))
	}
	fmt.Fprintf(tw, "Top product\t%s\n", product)
	fmt.Fprintf(tw, "Top attribution source\t%s\n", attribution)
	fmt.Fprintf(tw, "Top payment method\t%s\n", payment)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "REFUNDS")
	if s.Refunds.Empty() {
		fmt.Fprintln(tw, "No refunded orders")
	} else {
		fmt.Fprintf(tw, "Total refunded\t%s\n", f.Money(s.Refunds.TotalValue))
		fmt.Fprintf(tw, "Orders\t%s\n", strings.Join(s.Refunds.OrderIDs, ", "))
	}

	if len(leaders) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TOP PRODUCTS")
		for i, g := range leaders {
			fmt.Fprintf(tw, "%d.\t%s\t%s units\t%s\n", i+1, g.Key, f.Int(g.Units), f.Money(g.Revenue))
		}
	}
	return tw.Flush()
}

// Table writes a TableData as aligned columns followed by its summary line.
func Table(w io.Writer, t *engine.TableData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if t.Title != "" {
		fmt.Fprintln(tw, t.Title)
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(tw, "No data")
		return tw.Flush()
	}

	fmt.Fprintln(tw, strings.Join(t.Headers(), "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if t.Summary != nil {
		cells := make([]string, len(t.Columns))
		cells[0] = t.Summary.Label
		for i, col := range t.Columns[1:] {
			cells[i+1] = t.Summary.Values[col.Key]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
