package http

import (
	"html/template"
	"math"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	"tractorlog/internal/report"
	"tractorlog/internal/services"
)

type pageData struct {
	Title       string
	Session     *core.Session
	Unavailable bool
}

type loginPage struct {
	pageData
	Error    string
	Roles    []core.Role
	Role     core.Role
	Username string
}

type entryRow struct {
	Date, Customer, Location, Tractor, Acres, Cost, Employee string
}

type tableView struct {
	Columns []string
	Rows    []entryRow
}

type employeePage struct {
	pageData
	Today string
	Table tableView
}

type option struct {
	Value    string
	Selected bool
}

type groupRow struct {
	Key, Acres, Cost string
}

type chartLink struct {
	Name, Title string
}

type adminPage struct {
	pageData
	Options     services.FilterOptions
	Filter      aggregate.FilterSpec
	Filtered    bool
	Customers   []option
	Locations   []option
	Tractors    []option
	From, To    string
	Table       tableView
	Page        int
	TotalPages  int
	PrevPage    int
	NextPage    int
	PageQuery   template.URL
	FilterQuery template.URL
	TotalAcres  string
	TotalCost   string
	TotalLogs   string
	PerTractor  []groupRow
	PerEmployee []groupRow
	Charts      []chartLink
}

// formatAcres shows at most two decimals so summed floats stay readable.
func formatAcres(a float64) string {
	return strconv.FormatFloat(math.Round(a*100)/100, 'f', -1, 64)
}

func formatCost(c int64) string {
	return humanize.Comma(c)
}

func newTable(entries []core.LogEntry) tableView {
	t := tableView{Columns: report.TableHeader, Rows: make([]entryRow, 0, len(entries))}
	for _, e := range entries {
		t.Rows = append(t.Rows, entryRow{
			Date:     e.Date.String(),
			Customer: e.Customer,
			Location: e.Location,
			Tractor:  e.Tractor,
			Acres:    formatAcres(e.Acres),
			Cost:     formatCost(e.Cost),
			Employee: e.Employee,
		})
	}
	return t
}

func options(values, selected []string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Selected: slices.Contains(selected, v)})
	}
	return out
}

func groupRows(rows []aggregate.AggregateRow) []groupRow {
	out := make([]groupRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, groupRow{Key: r.Key, Acres: formatAcres(r.Acres), Cost: formatCost(r.Cost)})
	}
	return out
}

func newAdminPage(sess core.Session, view services.AdminView, fq FilterQuery) adminPage {
	// The form shows the store bounds when no date was chosen.
	from, to := view.Options.From, view.Options.To
	if !fq.Spec.From.IsZero() {
		from = fq.Spec.From
	}
	if !fq.Spec.To.IsZero() {
		to = fq.Spec.To
	}

	// Encode escapes every value, so the query is safe to splice into links.
	encoded := template.URL(fq.Encode())
	p := adminPage{
		pageData:    pageData{Title: "Admin Dashboard", Session: &sess, Unavailable: view.Unavailable},
		Options:     view.Options,
		Filter:      view.Filter,
		Filtered:    !fq.Spec.IsEmpty(),
		Customers:   options(view.Options.Customers, fq.Spec.Customers),
		Locations:   options(view.Options.Locations, fq.Spec.Locations),
		Tractors:    options(view.Options.Tractors, fq.Spec.Tractors),
		From:        from.String(),
		To:          to.String(),
		Table:       newTable(view.Rows),
		Page:        view.Page,
		TotalPages:  view.TotalPages,
		PageQuery:   encoded,
		FilterQuery: encoded,
		TotalAcres:  formatAcres(view.Totals.Acres),
		TotalCost:   formatCost(view.Totals.Cost),
		TotalLogs:   strconv.Itoa(view.Totals.Count),
		PerTractor:  groupRows(view.PerTractor),
		PerEmployee: groupRows(view.PerEmployee),
	}
	if view.Page > 1 {
		p.PrevPage = view.Page - 1
	}
	if view.Page < view.TotalPages {
		p.NextPage = view.Page + 1
	}
	for _, k := range report.ChartKinds() {
		spec, _ := k.Spec()
		p.Charts = append(p.Charts, chartLink{Name: k.String(), Title: spec.Title})
	}
	return p
}
