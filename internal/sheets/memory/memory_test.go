package memory

import (
	"context"
	"testing"

	"tractorlog/internal/core"
)

func TestSheetAppendRow(t *testing.T) {
	s := New()
	e := core.LogEntry{Date: core.NewDate(2025, 7, 1), Customer: "Rao", Location: "North", Tractor: "JD", Acres: 1, Cost: 100, Employee: "employee1"}

	ref, err := s.AppendRow(context.Background(), e)
	if err != nil || ref != "mem:2" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, _ = s.AppendRow(context.Background(), e)
	if ref != "mem:3" {
		t.Fatalf("unexpected second ref %q", ref)
	}
	if rows := s.Rows(); len(rows) != 2 || rows[0].Customer != "Rao" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
