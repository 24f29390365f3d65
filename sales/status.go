package sales

import (
	"strings"

	"github.com/spektr-org/salespulse/schema"
)

// ============================================================================
// STATUS FILTER — Vocabulary-driven classification and partitioning
// ============================================================================

// Classifier maps a status token onto Status using a configured vocabulary.
// Tokens are trimmed and case-folded before lookup.
type Classifier struct {
	completed map[string]bool
	refunded  map[string]bool
}

// NewClassifier builds lookup sets from the vocabulary.
func NewClassifier(v schema.Vocabulary) *Classifier {
	return &Classifier{
		completed: foldSet(v.Completed),
		refunded:  foldSet(v.Refunded),
	}
}

// Classify returns the status for a raw token; unknown tokens are StatusOther.
func (c *Classifier) Classify(token string) Status {
	key := schema.Fold(strings.TrimSpace(token))
	switch {
	case c.completed[key]:
		return StatusCompleted
	case c.refunded[key]:
		return StatusRefunded
	default:
		return StatusOther
	}
}

func foldSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[schema.Fold(strings.TrimSpace(item))] = true
	}
	return set
}

// Partition splits records by status. Every record lands in exactly one slice.
type Partition struct {
	Completed []OrderRecord
	Refunded  []OrderRecord
	Other     []OrderRecord
}

// Total is the number of partitioned records.
func (p Partition) Total() int {
	return len(p.Completed) + len(p.Refunded) + len(p.Other)
}

// PartitionRecords splits records by their classified Status, keeping input
// order within each slice.
func PartitionRecords(records []OrderRecord) Partition {
	var p Partition
	for _, r := range records {
		switch r.Status {
		case StatusCompleted:
			p.Completed = append(p.Completed, r)
		case StatusRefunded:
			p.Refunded = append(p.Refunded, r)
		default:
			p.Other = append(p.Other, r)
		}
	}
	return p
}
