package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tractorlog/internal/core"
)

func entry(i int) core.LogEntry {
	acres := 0.5 * float64(i+1)
	return core.LogEntry{
		Date:     core.NewDate(2025, 7, 1+i%28),
		Customer: fmt.Sprintf("Customer %d", i),
		Location: "North Field",
		Tractor:  "JD 5050",
		Acres:    acres,
		Cost:     core.CostForAcres(acres),
		Employee: "employee1",
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "db.json"))
	got, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(got))
	}
}

func TestAppendThenLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "db.json"))

	var want []core.LogEntry
	for i := 0; i < 12; i++ {
		e := entry(i)
		want = append(want, e)
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got, err := New(s.Path()).LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := New(path).Append(context.Background(), entry(4)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var doc struct {
		Logs []map[string]any `json:"logs"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Logs) != 1 {
		t.Fatalf("expected one log, got %d", len(doc.Logs))
	}
	want := map[string]any{
		"date":     "2025-07-05",
		"customer": "Customer 4",
		"location": "North Field",
		"tractor":  "JD 5050",
		"acres":    2.5,
		"cost":     float64(250),
		"employee": "employee1",
	}
	if diff := cmp.Diff(want, doc.Logs[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestReadsExistingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	doc := `{
  "logs": [
    {"date": "2025-07-01", "customer": "Rao", "location": "North", "tractor": "JD 5050", "acres": 2.5, "cost": 250, "employee": "employee1"}
  ]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := New(path).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].Cost != 250 || got[0].Date.String() != "2025-07-01" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestCorruptFileIsUnavailable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(path)

	_, err := s.LoadAll(ctx)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	err = s.Append(ctx, entry(0))
	if !errors.Is(err, core.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "{not json" {
		t.Fatalf("corrupt file must not be overwritten, got %q", raw)
	}
}

func TestUnwritableLocationFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(filepath.Join(blocker, "db.json"))
	if err := s.Append(context.Background(), entry(0)); !errors.Is(err, core.ErrIOFailure) {
		t.Fatalf("expected ErrIOFailure, got %v", err)
	}
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "db.json"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Append(ctx, entry(i)); err != nil {
				t.Errorf("Append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(got))
	}
}
