// Package aggregate holds the pure computations behind the admin view and
// the exported report: filtering, grouping, totals and pagination over an
// in-memory list of log entries. Nothing here mutates its input.
package aggregate

import (
	"slices"
	"sort"

	"tractorlog/internal/core"
)

// AllEmployees is the employee selector value that disables the employee predicate.
const AllEmployees = "All"

// FilterSpec is a set of optional predicates. A zero FilterSpec matches
// every entry.
type FilterSpec struct {
	Employee  string // "" or AllEmployees matches everyone
	Customers []string
	Locations []string
	Tractors  []string
	From      core.Date // inclusive, zero means unbounded
	To        core.Date // inclusive, zero means unbounded
}

// IsEmpty reports whether the spec has no active predicate.
func (s FilterSpec) IsEmpty() bool {
	return !s.hasEmployee() &&
		len(s.Customers) == 0 &&
		len(s.Locations) == 0 &&
		len(s.Tractors) == 0 &&
		s.From.IsZero() &&
		s.To.IsZero()
}

func (s FilterSpec) hasEmployee() bool {
	return s.Employee != "" && s.Employee != AllEmployees
}

// Matches reports whether e satisfies every present predicate.
func (s FilterSpec) Matches(e core.LogEntry) bool {
	if s.hasEmployee() && e.Employee != s.Employee {
		return false
	}
	if len(s.Customers) > 0 && !slices.Contains(s.Customers, e.Customer) {
		return false
	}
	if len(s.Locations) > 0 && !slices.Contains(s.Locations, e.Location) {
		return false
	}
	if len(s.Tractors) > 0 && !slices.Contains(s.Tractors, e.Tractor) {
		return false
	}
	if !s.From.IsZero() && e.Date.Before(s.From) {
		return false
	}
	if !s.To.IsZero() && e.Date.After(s.To) {
		return false
	}
	return true
}

// Filter returns a new slice holding the entries that satisfy spec, in
// input order.
func Filter(entries []core.LogEntry, spec FilterSpec) []core.LogEntry {
	out := make([]core.LogEntry, 0, len(entries))
	for _, e := range entries {
		if spec.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// ForEmployee is the employee view's filter: only the entries they created.
func ForEmployee(entries []core.LogEntry, username string) []core.LogEntry {
	if username == "" {
		return []core.LogEntry{}
	}
	return Filter(entries, FilterSpec{Employee: username})
}

// SortByDateDesc returns a copy of entries ordered newest day first. Entries
// of the same day keep their insertion order.
func SortByDateDesc(entries []core.LogEntry) []core.LogEntry {
	out := slices.Clone(entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Distinct returns the sorted set of non-empty keys present in entries.
// It feeds the filter selectors.
func Distinct(entries []core.LogEntry, key KeyFunc) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0)
	for _, e := range entries {
		k := key(e)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest entry days. ok is false for an
// empty input.
func DateBounds(entries []core.LogEntry) (first, last core.Date, ok bool) {
	for i, e := range entries {
		if i == 0 || e.Date.Before(first) {
			first = e.Date
		}
		if i == 0 || e.Date.After(last) {
			last = e.Date
		}
	}
	return first, last, len(entries) > 0
}
