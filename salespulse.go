// Package salespulse computes sales reports from a raw order export: order
// counts, units, revenue, the top product / attribution source / payment
// method, refunds, and pivots by dimension.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/salespulse/engine"
//	    "github.com/spektr-org/salespulse/helpers"
//	    "github.com/spektr-org/salespulse/sales"
//	    "github.com/spektr-org/salespulse/schema"
//	)
//
//	ds, err := helpers.ParseCSV(data)
//	p, err := sales.NewPipeline(schema.Default())
//	summary, err := p.Summarize(ds)
//	rows, err := p.Pivot(ds, sales.DimPaymentMethod, engine.Filters{}, sales.PivotByRevenue)
//
// English exports ("Order ID", "Net Amount", ...) and the Spanish sheet
// layout ("Número de venta", "Estado", "Total", ...) are accepted out of the
// box; other layouts are described with a YAML schema (see schema.Load).
//
// The sales package never performs I/O. Fetching (source), rendering
// (report), and the HTTP API (server) are layered on top of it.
package salespulse
