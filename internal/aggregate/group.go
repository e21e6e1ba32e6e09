package aggregate

import (
	"sort"

	"tractorlog/internal/core"
)

// KeyFunc extracts the grouping key of an entry.
type KeyFunc func(core.LogEntry) string

var (
	ByTractor  KeyFunc = func(e core.LogEntry) string { return e.Tractor }
	ByLocation KeyFunc = func(e core.LogEntry) string { return e.Location }
	ByEmployee KeyFunc = func(e core.LogEntry) string { return e.Employee }
	ByCustomer KeyFunc = func(e core.LogEntry) string { return e.Customer }
	ByDay      KeyFunc = func(e core.LogEntry) string { return e.Day() }
)

// Measure names a numeric field of LogEntry that can be summed.
type Measure int

const (
	MeasureAcres Measure = iota
	MeasureCost
)

func (m Measure) String() string {
	switch m {
	case MeasureAcres:
		return "acres"
	case MeasureCost:
		return "cost"
	default:
		return "unknown"
	}
}

// Of reads the measure from an aggregate row.
func (m Measure) Of(r AggregateRow) float64 {
	switch m {
	case MeasureCost:
		return float64(r.Cost)
	default:
		return r.Acres
	}
}

// AggregateRow is one grouping key with the summed numeric fields of the
// entries that share it.
type AggregateRow struct {
	Key   string
	Acres float64
	Cost  int64
	Count int
}

// GroupSum groups entries by key and sums acres and cost per group. Rows
// come out in first-seen key order.
func GroupSum(entries []core.LogEntry, key KeyFunc) []AggregateRow {
	index := make(map[string]int)
	rows := make([]AggregateRow, 0)
	for _, e := range entries {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, AggregateRow{Key: k})
		}
		rows[i].Acres += e.Acres
		rows[i].Cost += e.Cost
		rows[i].Count++
	}
	return rows
}

// SortRowsByKey orders rows by key ascending in place and returns them.
// Day keys are YYYY-MM-DD so this is also chronological.
func SortRowsByKey(rows []AggregateRow) []AggregateRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows
}

// Totals is the summary line of a set of entries.
type Totals struct {
	Acres float64
	Cost  int64
	Count int
}

// ComputeTotals sums acres and cost over entries. No rounding is applied
// beyond each entry's own cost truncation.
func ComputeTotals(entries []core.LogEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Acres += e.Acres
		t.Cost += e.Cost
	}
	t.Count = len(entries)
	return t
}
