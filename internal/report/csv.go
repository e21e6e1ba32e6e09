package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"tractorlog/internal/core"
)

// CSVFilename is the download name of the filtered table.
const CSVFilename = "tractor_logs.csv"

// CSVHeader matches the LogEntry field names.
var CSVHeader = []string{"date", "customer", "location", "tractor", "acres", "cost", "employee"}

// WriteCSV writes every entry, in order, below a header row.
func WriteCSV(w io.Writer, entries []core.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(entryRow(e)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
