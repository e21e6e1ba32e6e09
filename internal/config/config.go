package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendJSON   = "json"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendSheets = "sheets"
)

// ValidBackends lists every accepted DATA_BACKEND value.
var ValidBackends = []string{BackendJSON, BackendMemory, BackendSQLite, BackendMongo, BackendSheets}

type Config struct {
	// HTTP Server
	Port string

	// Record store
	DataBackend   string
	JSONStorePath string
	SQLiteDBPath  string
	MongoURI      string
	MongoDatabase string

	// Access gate
	CredentialsFile string
	SessionTTL      time.Duration

	// Views and report
	PageSize   int
	BannerPath string

	// AMQP, empty URL disables events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// Scheduled report export, empty schedule disables it
	ReportSchedule string
	ReportDir      string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8501"),

		DataBackend:   strings.ToLower(getEnv("DATA_BACKEND", BackendJSON)),
		JSONStorePath: getEnv("JSON_STORE_PATH", "db.json"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/tractorlog.db"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "tractorlog"),

		CredentialsFile: getEnv("CREDENTIALS_FILE", ""),
		SessionTTL:      getEnvDuration("SESSION_TTL", 12*time.Hour),

		PageSize:   getEnvInt("PAGE_SIZE", 10),
		BannerPath: getEnv("BANNER_PATH", "banner.png"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tractorlog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_entries"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Logs"),
		GoogleCredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		ReportSchedule: getEnv("REPORT_SCHEDULE", ""),
		ReportDir:      getEnv("REPORT_DIR", "./reports"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// SheetsConfigured reports whether a spreadsheet mirror can be built.
func (c *Config) SheetsConfigured() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(ValidBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends))
	}

	switch c.DataBackend {
	case BackendJSON:
		if c.JSONStorePath == "" {
			errors = append(errors, "JSON store path cannot be empty when using json backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendMongo:
		if u, err := url.Parse(c.MongoURI); err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			errors = append(errors, fmt.Sprintf("invalid MongoDB URI '%s': must use mongodb:// or mongodb+srv://", c.MongoURI))
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MongoDB database name cannot be empty when using mongo backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
	}

	if c.CredentialsFile != "" {
		if _, err := os.Stat(c.CredentialsFile); err != nil {
			errors = append(errors, fmt.Sprintf("credentials file '%s' is not readable: %v", c.CredentialsFile, err))
		}
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.PageSize < 1 || c.PageSize > 500 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be between 1 and 500", c.PageSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportSchedule != "" {
		if _, err := cron.ParseStandard(c.ReportSchedule); err != nil {
			errors = append(errors, fmt.Sprintf("invalid report schedule '%s': %v", c.ReportSchedule, err))
		}
		if c.ReportDir == "" {
			errors = append(errors, "report directory cannot be empty when a report schedule is set")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
