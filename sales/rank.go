package sales

import (
	"github.com/spektr-org/salespulse/engine"
)

// ============================================================================
// TOP-N RANKER
// ============================================================================

// RankBy selects the measure a ranking orders on.
type RankBy int

const (
	RankUnits RankBy = iota
	RankRevenue
	RankCount
)

func (r RankBy) String() string {
	switch r {
	case RankRevenue:
		return "revenue"
	case RankCount:
		return "count"
	default:
		return "units"
	}
}

func (r RankBy) measure() string {
	switch r {
	case RankRevenue:
		return MeasureNetAmount
	case RankCount:
		return ""
	default:
		return MeasureQuantity
	}
}

func (r RankBy) aggregation() string {
	if r == RankCount {
		return engine.AggCount
	}
	return engine.AggSum
}

func (r RankBy) sortMode() string {
	if r == RankCount {
		return engine.SortCountDesc
	}
	return engine.SortValueDesc
}

func (r RankBy) value(g GroupStat) float64 {
	switch r {
	case RankRevenue:
		return g.Revenue
	case RankCount:
		return float64(g.Count)
	default:
		return float64(g.Units)
	}
}

// TopN returns up to n groups ordered by the measure descending, ties broken
// by ascending key. n <= 0 returns every group ranked. Keys are expected to
// be unique, as GroupBy produces them.
func TopN(groups []GroupStat, by RankBy, n int) []GroupStat {
	if len(groups) == 0 {
		return []GroupStat{}
	}

	ranked := make([]engine.Group, len(groups))
	byKey := make(map[string]GroupStat, len(groups))
	for i, g := range groups {
		ranked[i] = engine.Group{Key: g.Key, Label: g.Key, Value: by.value(g), Count: g.Count}
		byKey[g.Key] = g
	}
	engine.SortGroups(ranked, by.sortMode())

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]GroupStat, len(ranked))
	for i, g := range ranked {
		out[i] = byKey[g.Key]
	}
	return out
}

// TopOne returns the highest-ranked group, or false when there are none.
func TopOne(groups []GroupStat, by RankBy) (GroupStat, bool) {
	top := TopN(groups, by, 1)
	if len(top) == 0 {
		return GroupStat{}, false
	}
	return top[0], true
}
