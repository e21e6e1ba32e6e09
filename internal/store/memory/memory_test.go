package memory

import (
	"context"
	"testing"

	"tractorlog/internal/core"
)

func TestMemoryStoreAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	seed := core.LogEntry{Date: core.NewDate(2025, 7, 1), Customer: "a", Location: "b", Tractor: "c", Acres: 1, Cost: 100, Employee: "employee1"}
	s := New(seed)

	next := seed
	next.Customer = "z"
	if err := s.Append(ctx, next); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 2 || got[0].Customer != "a" || got[1].Customer != "z" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	got[0].Customer = "mutated"
	again, _ := s.LoadAll(ctx)
	if again[0].Customer != "a" {
		t.Fatalf("LoadAll must return a copy")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
}

func TestEmptyStore(t *testing.T) {
	got, err := New().LoadAll(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty store, got %v, %v", got, err)
	}
}
