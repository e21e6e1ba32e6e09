package aggregate

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tractorlog/internal/core"
)

func entry(day int, customer, location, tractor string, acres float64, employee string) core.LogEntry {
	return core.LogEntry{
		Date:     core.NewDate(2025, 6, day),
		Customer: customer,
		Location: location,
		Tractor:  tractor,
		Acres:    acres,
		Cost:     core.CostForAcres(acres),
		Employee: employee,
	}
}

func sample() []core.LogEntry {
	return []core.LogEntry{
		entry(3, "Rao", "North", "JD 5050", 2.5, "employee1"),
		entry(1, "Patel", "South", "Mahindra 575", 1.5, "employee2"),
		entry(2, "Rao", "North", "Mahindra 575", 4, "employee1"),
		entry(3, "Singh", "East", "JD 5050", 0.5, "employee2"),
		entry(5, "Patel", "South", "Swaraj 744", 3.25, "employee1"),
	}
}

func TestFilterEmptySpecIsIdentity(t *testing.T) {
	in := sample()
	got := Filter(in, FilterSpec{})
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("empty filter changed input (-want +got):\n%s", diff)
	}
	if !(FilterSpec{Employee: AllEmployees}).IsEmpty() {
		t.Fatalf("All employee selector should be an empty spec")
	}
	got[0].Customer = "changed"
	if in[0].Customer == "changed" {
		t.Fatalf("filter result aliases input")
	}
}

func TestFilterPredicates(t *testing.T) {
	in := sample()
	tests := []struct {
		name string
		spec FilterSpec
		want []int
	}{
		{"employee", FilterSpec{Employee: "employee2"}, []int{1, 3}},
		{"all employees", FilterSpec{Employee: AllEmployees}, []int{0, 1, 2, 3, 4}},
		{"customers", FilterSpec{Customers: []string{"Rao", "Singh"}}, []int{0, 2, 3}},
		{"locations", FilterSpec{Locations: []string{"South"}}, []int{1, 4}},
		{"tractors", FilterSpec{Tractors: []string{"JD 5050"}}, []int{0, 3}},
		{"date range inclusive", FilterSpec{From: core.NewDate(2025, 6, 2), To: core.NewDate(2025, 6, 3)}, []int{0, 2, 3}},
		{"open ended from", FilterSpec{From: core.NewDate(2025, 6, 4)}, []int{4}},
		{"combined", FilterSpec{Employee: "employee1", Tractors: []string{"Mahindra 575", "Swaraj 744"}, To: core.NewDate(2025, 6, 4)}, []int{2}},
		{"no match", FilterSpec{Customers: []string{"Nobody"}}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]core.LogEntry, 0, len(tt.want))
			for _, i := range tt.want {
				want = append(want, in[i])
			}
			if diff := cmp.Diff(want, Filter(in, tt.spec)); diff != "" {
				t.Fatalf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForEmployee(t *testing.T) {
	got := ForEmployee(sample(), "employee2")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if len(ForEmployee(sample(), "")) != 0 {
		t.Fatalf("blank username must not see everything")
	}
}

func TestGroupSumFirstSeenOrder(t *testing.T) {
	rows := GroupSum(sample(), ByTractor)
	want := []AggregateRow{
		{Key: "JD 5050", Acres: 3, Cost: 300, Count: 2},
		{Key: "Mahindra 575", Acres: 5.5, Cost: 550, Count: 2},
		{Key: "Swaraj 744", Acres: 3.25, Cost: 325, Count: 1},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("GroupSum mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupSumMatchesTotals(t *testing.T) {
	in := sample()
	totals := ComputeTotals(in)
	for _, key := range []KeyFunc{ByTractor, ByLocation, ByEmployee, ByCustomer, ByDay} {
		var acres float64
		var cost int64
		var count int
		for _, r := range GroupSum(in, key) {
			acres += r.Acres
			cost += r.Cost
			count += r.Count
		}
		if math.Abs(acres-totals.Acres) > 1e-9 || cost != totals.Cost || count != totals.Count {
			t.Fatalf("group sums (%v, %d, %d) differ from totals %+v", acres, cost, count, totals)
		}
	}
}

func TestSortRowsByKeyIsChronologicalForDays(t *testing.T) {
	rows := SortRowsByKey(GroupSum(sample(), ByDay))
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	want := []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-05"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("day order mismatch (-want +got):\n%s", diff)
	}
	if rows[2].Cost != 300 {
		t.Fatalf("expected 300 cost on 2025-06-03, got %d", rows[2].Cost)
	}
}

func TestTotals(t *testing.T) {
	got := ComputeTotals([]core.LogEntry{entry(1, "c", "l", "t", 2.5, "e")})
	if got != (Totals{Acres: 2.5, Cost: 250, Count: 1}) {
		t.Fatalf("unexpected totals %+v", got)
	}
	if got := ComputeTotals(nil); got != (Totals{}) {
		t.Fatalf("empty totals should be zero, got %+v", got)
	}
	if rows := GroupSum(nil, ByTractor); len(rows) != 0 {
		t.Fatalf("empty group sum should be empty, got %v", rows)
	}
}

func TestPaginateReconstructsInput(t *testing.T) {
	in := make([]core.LogEntry, 0, 37)
	for i := 0; i < 37; i++ {
		in = append(in, entry(1+i%28, fmt.Sprintf("c%d", i), "l", "t", 1, "e"))
	}
	sorted := SortByDateDesc(in)
	pages := TotalPages(len(sorted), 10)
	if pages != 4 {
		t.Fatalf("expected 4 pages, got %d", pages)
	}
	var all []core.LogEntry
	for p := 1; p <= pages; p++ {
		page := Paginate(sorted, 10, p)
		if len(page) > 10 {
			t.Fatalf("page %d has %d rows", p, len(page))
		}
		all = append(all, page...)
	}
	if diff := cmp.Diff(sorted, all); diff != "" {
		t.Fatalf("pages do not reconstruct input (-want +got):\n%s", diff)
	}
}

func TestPaginateClamps(t *testing.T) {
	in := sample()
	if diff := cmp.Diff(in[:2], Paginate(in, 2, 0)); diff != "" {
		t.Fatalf("page 0 should clamp to first page:\n%s", diff)
	}
	if diff := cmp.Diff(in[4:], Paginate(in, 2, 99)); diff != "" {
		t.Fatalf("page 99 should clamp to last page:\n%s", diff)
	}
	if got := Paginate(nil, 10, 1); len(got) != 0 {
		t.Fatalf("empty input should give empty page")
	}
	if got := TotalPages(0, 10); got != 1 {
		t.Fatalf("empty input still has one page, got %d", got)
	}
}

func TestSortByDateDescIsStable(t *testing.T) {
	got := SortByDateDesc(sample())
	order := make([]string, len(got))
	for i, e := range got {
		order[i] = e.Day() + "/" + e.Customer
	}
	want := []string{"2025-06-05/Patel", "2025-06-03/Rao", "2025-06-03/Singh", "2025-06-02/Rao", "2025-06-01/Patel"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
}

func TestDistinctAndBounds(t *testing.T) {
	in := sample()
	if diff := cmp.Diff([]string{"Patel", "Rao", "Singh"}, Distinct(in, ByCustomer)); diff != "" {
		t.Fatalf("distinct mismatch:\n%s", diff)
	}
	first, last, ok := DateBounds(in)
	if !ok || first.String() != "2025-06-01" || last.String() != "2025-06-05" {
		t.Fatalf("unexpected bounds %v %v %v", first, last, ok)
	}
	if _, _, ok := DateBounds(nil); ok {
		t.Fatalf("empty input has no bounds")
	}
}
