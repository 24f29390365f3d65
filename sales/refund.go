package sales

// RefundReport summarizes refunded orders. OrderIDs is never nil so an empty
// report serializes as [] rather than null.
type RefundReport struct {
	TotalValue float64  `json:"total_value"`
	OrderIDs   []string `json:"order_ids"`
}

// Empty reports whether no refunds were found.
func (r RefundReport) Empty() bool {
	return len(r.OrderIDs) == 0
}

// SummarizeRefunds totals refunded records and lists their order ids in
// input order.
func SummarizeRefunds(refunded []OrderRecord) RefundReport {
	report := RefundReport{OrderIDs: make([]string, 0, len(refunded))}
	for _, r := range refunded {
		report.TotalValue += r.NetAmount
		report.OrderIDs = append(report.OrderIDs, r.OrderID)
	}
	return report
}
