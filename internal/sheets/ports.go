// Package sheets holds the spreadsheet mirror of the work log.
package sheets

import (
	"context"

	"tractorlog/internal/core"
)

// RowWriter appends one entry as a spreadsheet row and returns a reference
// to the written range.
type RowWriter interface {
	AppendRow(ctx context.Context, e core.LogEntry) (rowRef string, err error)
}

// Header is the first row of a log sheet.
var Header = []string{"Date", "Customer", "Location", "Tractor", "Acres", "Cost", "Employee"}
