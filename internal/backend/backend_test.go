package backend

import (
	"context"
	"path/filepath"
	"testing"

	"tractorlog/internal/config"
	"tractorlog/internal/store/jsonfile"
	"tractorlog/internal/store/memory"
	"tractorlog/internal/store/sqlite"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "csv"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "sheets",
		GoogleSpreadsheetID: "abc",
		GoogleSheetName:     "Logs",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != Sheets || cfg.Sheets.SpreadsheetID != "abc" || cfg.Sheets.SheetName != "Logs" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestFactoryCreatesLocalStores(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(nil)

	tests := []struct {
		cfg   Config
		check func(t *testing.T, r *Result)
	}{
		{
			cfg: Config{Type: JSON, JSONStorePath: filepath.Join(dir, "db.json")},
			check: func(t *testing.T, r *Result) {
				if _, ok := r.Store.(*jsonfile.Store); !ok {
					t.Errorf("expected json store, got %T", r.Store)
				}
			},
		},
		{
			cfg: Config{Type: Memory},
			check: func(t *testing.T, r *Result) {
				if _, ok := r.Store.(*memory.Store); !ok {
					t.Errorf("expected memory store, got %T", r.Store)
				}
			},
		},
		{
			cfg: Config{Type: SQLite, SQLiteDBPath: filepath.Join(dir, "tractorlog.db")},
			check: func(t *testing.T, r *Result) {
				if _, ok := r.Store.(*sqlite.Repository); !ok {
					t.Errorf("expected sqlite store, got %T", r.Store)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Type.String(), func(t *testing.T) {
			r, err := f.Create(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			tt.check(t, r)
			entries, err := r.Store.LoadAll(context.Background())
			if err != nil || len(entries) != 0 {
				t.Errorf("fresh store should be empty, got %v, %v", entries, err)
			}
			if err := r.Cleanup(); err != nil {
				t.Errorf("Cleanup: %v", err)
			}
		})
	}
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	if _, err := NewFactory(nil).Create(context.Background(), Config{Type: "csv"}); err == nil {
		t.Fatal("expected error")
	}
}
