package sales

import (
	"math"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/spektr-org/salespulse/engine"
	"github.com/spektr-org/salespulse/schema"
)

// Property tests for the pipeline's conservation and determinism guarantees.

var (
	genStatus  = gen.OneConstOf("completed", "Completed", "refunded", "DEVUELTA", "exitosa", "pending", "", "cancelled")
	genProduct = gen.OneConstOf("Widget", "2x Widget", "3× Gadget", "x3 Lamp", "Lamp", "10X Mug")
	genPayment = gen.OneConstOf("card", "cash", "Card", "transfer")
	genSource  = gen.OneConstOf("ads", "organic", "instagram")
	genCents   = gen.Int64Range(-100000, 10000000)
)

type rawOrder struct {
	Status  string
	Product string
	Payment string
	Source  string
	Cents   int64
}

func genRawOrder() gopter.Gen {
	return gopter.CombineGens(genStatus, genProduct, genPayment, genSource, genCents).
		Map(func(v []interface{}) rawOrder {
			return rawOrder{
				Status:  v[0].(string),
				Product: v[1].(string),
				Payment: v[2].(string),
				Source:  v[3].(string),
				Cents:   v[4].(int64),
			}
		})
}

func datasetOf(orders []rawOrder) Dataset {
	ds := Dataset{Columns: englishColumns}
	for i, o := range orders {
		amount := "$" + engine.FormatCurrency(float64(o.Cents)/100, "")
		ds.Rows = append(ds.Rows, englishRow(strconv.Itoa(i), o.Product, "", o.Status, amount, o.Payment, o.Source))
	}
	return ds
}

func TestPipelineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every record lands in exactly one partition", prop.ForAll(
		func(orders []rawOrder) bool {
			records, err := Normalize(datasetOf(orders))
			if err != nil {
				return false
			}
			p := PartitionRecords(records)
			return p.Total() == len(records) && len(records) == len(orders)
		},
		gen.SliceOf(genRawOrder()),
	))

	properties.Property("quantity is never below one", prop.ForAll(
		func(orders []rawOrder) bool {
			records, err := Normalize(datasetOf(orders))
			if err != nil {
				return false
			}
			for _, r := range records {
				if r.Quantity < 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRawOrder()),
	))

	properties.Property("pivot totals equal the sum of all amounts", prop.ForAll(
		func(orders []rawOrder) bool {
			records, err := Normalize(datasetOf(orders))
			if err != nil {
				return false
			}
			var want float64
			for _, r := range records {
				want += r.NetAmount
			}
			for _, dim := range Dimensions {
				rows, err := Pivot(records, dim)
				if err != nil {
					return false
				}
				var got float64
				count := 0
				for _, row := range rows {
					got += row.TotalRevenue
					count += row.Count
				}
				if math.Abs(got-want) > 1e-6 || count != len(records) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genRawOrder()),
	))

	properties.Property("summaries are deterministic", prop.ForAll(
		func(orders []rawOrder) bool {
			records, err := Normalize(datasetOf(orders))
			if err != nil {
				return false
			}
			a, b := Summarize(records), Summarize(records)
			return summaryEqual(a, b)
		},
		gen.SliceOf(genRawOrder()),
	))

	properties.Property("formatted amounts parse back to their value", prop.ForAll(
		func(cents int64) bool {
			v := float64(cents) / 100
			formatted := "$" + engine.FormatCurrency(v, "")
			symbols := schema.Default().CurrencySymbols
			return math.Abs(ParseAmount(formatted, symbols)-ParseAmount(v, symbols)) < 1e-9
		},
		genCents,
	))

	properties.TestingRun(t)
}

func summaryEqual(a, b *Summary) bool {
	if a.TotalRows != b.TotalRows || a.SuccessfulCount != b.SuccessfulCount ||
		a.RefundedCount != b.RefundedCount || a.OtherCount != b.OtherCount ||
		a.TotalUnits != b.TotalUnits || a.TotalRevenue != b.TotalRevenue {
		return false
	}
	if (a.TopProduct == nil) != (b.TopProduct == nil) ||
		(a.TopProduct != nil && *a.TopProduct != *b.TopProduct) {
		return false
	}
	if (a.TopPaymentMethod == nil) != (b.TopPaymentMethod == nil) ||
		(a.TopPaymentMethod != nil && *a.TopPaymentMethod != *b.TopPaymentMethod) {
		return false
	}
	if (a.TopAttributionSource == nil) != (b.TopAttributionSource == nil) ||
		(a.TopAttributionSource != nil && *a.TopAttributionSource != *b.TopAttributionSource) {
		return false
	}
	if a.Refunds.TotalValue != b.Refunds.TotalValue || len(a.Refunds.OrderIDs) != len(b.Refunds.OrderIDs) {
		return false
	}
	for i := range a.Refunds.OrderIDs {
		if a.Refunds.OrderIDs[i] != b.Refunds.OrderIDs[i] {
			return false
		}
	}
	return true
}
