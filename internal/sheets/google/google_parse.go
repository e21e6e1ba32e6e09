package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tractorlog/internal/core"
)

func toRow(e core.LogEntry) []any {
	return []any{e.Date.String(), e.Customer, e.Location, e.Tractor, e.Acres, e.Cost, e.Employee}
}

// parseRows converts a values matrix read with UNFORMATTED_VALUE into
// entries. Numeric cells arrive as float64, text cells as string. A leading
// header row and blank rows are skipped.
func parseRows(values [][]any) ([]core.LogEntry, error) {
	entries := []core.LogEntry{}
	for i, row := range values {
		if isBlank(row) {
			continue
		}
		if i == 0 && strings.EqualFold(text(row, 0), "date") {
			continue
		}
		e, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(row []any) (core.LogEntry, error) {
	date, err := core.ParseDate(text(row, 0))
	if err != nil {
		return core.LogEntry{}, fmt.Errorf("date %q: %w", text(row, 0), err)
	}
	acres, err := acresCell(cell(row, 4))
	if err != nil {
		return core.LogEntry{}, fmt.Errorf("acres %q: %w", text(row, 4), err)
	}
	cost, err := costCell(cell(row, 5))
	if err != nil {
		return core.LogEntry{}, fmt.Errorf("cost %q: %w", text(row, 5), err)
	}
	return core.LogEntry{
		Date:     date,
		Customer: text(row, 1),
		Location: text(row, 2),
		Tractor:  text(row, 3),
		Acres:    acres,
		Cost:     cost,
		Employee: text(row, 6),
	}, nil
}

// acresCell takes a number as is. Text falls back to ParseAcres, which
// reads a comma as the decimal separator.
func acresCell(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return core.ParseAcres(n)
	default:
		return 0, fmt.Errorf("unexpected cell type %T", v)
	}
}

func costCell(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("not a whole number")
		}
		return int64(n), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("unexpected cell type %T", v)
	}
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func text(row []any, i int) string {
	v := cell(row, i)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func isBlank(row []any) bool {
	for i := range row {
		if text(row, i) != "" {
			return false
		}
	}
	return true
}
