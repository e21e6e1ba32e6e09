// Package backend builds the configured record store.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"tractorlog/internal/config"
	applog "tractorlog/internal/log"
	"tractorlog/internal/sheets/google"
	"tractorlog/internal/store"
	"tractorlog/internal/store/jsonfile"
	"tractorlog/internal/store/memory"
	"tractorlog/internal/store/mongo"
	"tractorlog/internal/store/sqlite"
)

// Type names a record store implementation.
type Type string

const (
	JSON   Type = config.BackendJSON
	Memory Type = config.BackendMemory
	SQLite Type = config.BackendSQLite
	Mongo  Type = config.BackendMongo
	Sheets Type = config.BackendSheets
)

func (t Type) String() string { return string(t) }

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	return slices.Contains(config.ValidBackends, string(t))
}

// Config carries the settings each backend needs.
type Config struct {
	Type Type

	JSONStorePath string
	SQLiteDBPath  string
	MongoURI      string
	MongoDatabase string
	Sheets        google.Config

	// ConnectTimeout bounds the initial dial of networked stores.
	ConnectTimeout time.Duration
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:          t,
		JSONStorePath: appConfig.JSONStorePath,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		MongoURI:      appConfig.MongoURI,
		MongoDatabase: appConfig.MongoDatabase,
		Sheets: google.Config{
			SpreadsheetID:   appConfig.GoogleSpreadsheetID,
			SheetName:       appConfig.GoogleSheetName,
			CredentialsJSON: appConfig.GoogleCredentialsJSON,
			CredentialsFile: appConfig.GoogleCredentialsFile,
		},
		ConnectTimeout: 10 * time.Second,
	}, nil
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the store and its cleanup function, never nil.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger.With(applog.FieldComponent, applog.ComponentBackend)}
}

// Create builds the store selected by cfg.Type.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	var (
		s   store.Store
		err error
	)
	switch cfg.Type {
	case JSON:
		js := jsonfile.New(cfg.JSONStorePath)
		f.logger.Info("Initialized JSON file backend", "path", js.Path())
		s = js
	case Memory:
		f.logger.Info("Initialized memory backend")
		s = memory.New()
	case SQLite:
		s, err = sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case Mongo:
		dialCtx, cancel := withTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		s, err = mongo.NewRepository(dialCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB repository: %w", err)
		}
		f.logger.Info("Initialized MongoDB backend", "database", cfg.MongoDatabase)
	case Sheets:
		s, err = google.New(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend", "sheet", cfg.Sheets.SheetName)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}

	return &Result{
		Store:   s,
		Cleanup: func() error { return store.Close(s) },
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
