package contract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/cleanscore/schema"
)

// Default values for configuration.
const (
	DefaultOllamaURL             = "http://localhost:11434"
	DefaultModel                 = "llama2"
	DefaultTemperature           = 0.2
	DefaultAnalysisTimeoutSecs   = 180
	DefaultSuggestionTimeoutSecs = 120
	DefaultHealthTimeoutSecs     = 30
	DefaultMaxConcurrent         = 2
	MaxConcurrentLimit           = 8
	DefaultMaxJSONFixRetries     = 5
	MaxJSONFixRetriesLimit       = 10
	DefaultSuggestionAttempts    = 3
	DefaultSuggestionBackoff     = 2 * time.Second
	DefaultLookback              = "7 days"
	DefaultScanLimit             = 5
	MaxScanLimit                 = 100
	DefaultInterval              = "1h"
	DefaultListLimit             = 25
	DefaultPrecision             = 1
	DefaultServeAddr             = ":3000"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath string

	// Model server
	OllamaURL          string
	Model              string
	Temperature        float64
	AnalysisTimeout    time.Duration
	SuggestionsTimeout time.Duration
	HealthTimeout      time.Duration
	MaxJSONFixRetries  int
	SuggestionAttempts int
	SuggestionBackoff  time.Duration

	// Orchestration
	MaxConcurrent int
	Lookback      time.Duration
	ScanLimit     int
	Interval      time.Duration

	// Storage
	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string

	// Output
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int
	UseColors  bool
	ListLimit  int
	Language   string

	// Logging
	LogLevel        slog.Level
	LogFormat       string
	DetailedLogging bool

	ServeAddr string
}

// ConfigRawInput holds the raw, unvalidated configuration from all sources (file, env, flags).
type ConfigRawInput struct {
	RepoPathStr string `mapstructure:"repo"`

	OllamaURL          string  `mapstructure:"ollama-url"`
	Model              string  `mapstructure:"model"`
	Temperature        float64 `mapstructure:"temperature"`
	AnalysisTimeout    int     `mapstructure:"analysis-timeout"`
	SuggestionsTimeout int     `mapstructure:"suggestions-timeout"`
	HealthTimeout      int     `mapstructure:"health-timeout"`
	MaxJSONFixRetries  int     `mapstructure:"max-json-fix-retries"`
	SuggestionAttempts int     `mapstructure:"suggestion-attempts"`

	MaxConcurrent int    `mapstructure:"max-concurrent"`
	Lookback      string `mapstructure:"lookback"`
	ScanLimit     int    `mapstructure:"scan-limit"`
	Interval      string `mapstructure:"interval"`

	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Limit      int    `mapstructure:"limit"`
	Language   string `mapstructure:"language"`

	LogLevel        string `mapstructure:"log-level"`
	LogFormat       string `mapstructure:"log-format"`
	DetailedLogging bool   `mapstructure:"detailed-logging"`

	ServeAddr string `mapstructure:"addr"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := ProcessSettings(cfg, input); err != nil {
		return err
	}
	return resolveGitPath(ctx, cfg, client, input)
}

// ProcessSettings validates every setting that does not need a Git repository.
func ProcessSettings(cfg *Config, input *ConfigRawInput) error {
	if err := validateModelInputs(cfg, input); err != nil {
		return err
	}
	if err := validateScanInputs(cfg, input); err != nil {
		return err
	}
	if err := validateOutputInputs(cfg, input); err != nil {
		return err
	}
	if err := validateLogInputs(cfg, input); err != nil {
		return err
	}
	return ValidateStoreInputs(cfg, input)
}

// validateModelInputs checks the model server settings.
func validateModelInputs(cfg *Config, input *ConfigRawInput) error {
	u, err := url.Parse(strings.TrimSpace(input.OllamaURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ollama-url must be an http(s) URL (received %q)", input.OllamaURL)
	}
	cfg.OllamaURL = strings.TrimRight(u.String(), "/")

	cfg.Model = strings.TrimSpace(input.Model)
	if cfg.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if input.Temperature < 0 || input.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2 (received %v)", input.Temperature)
	}
	cfg.Temperature = input.Temperature

	timeouts := []struct {
		name string
		secs int
		dst  *time.Duration
	}{
		{"analysis-timeout", input.AnalysisTimeout, &cfg.AnalysisTimeout},
		{"suggestions-timeout", input.SuggestionsTimeout, &cfg.SuggestionsTimeout},
		{"health-timeout", input.HealthTimeout, &cfg.HealthTimeout},
	}
	for _, t := range timeouts {
		if t.secs <= 0 {
			return fmt.Errorf("%s must be greater than 0 seconds (received %d)", t.name, t.secs)
		}
		*t.dst = time.Duration(t.secs) * time.Second
	}

	if input.MaxJSONFixRetries < 0 || input.MaxJSONFixRetries > MaxJSONFixRetriesLimit {
		return fmt.Errorf("max-json-fix-retries must be between 0 and %d (received %d)", MaxJSONFixRetriesLimit, input.MaxJSONFixRetries)
	}
	cfg.MaxJSONFixRetries = input.MaxJSONFixRetries

	if input.SuggestionAttempts < 1 || input.SuggestionAttempts > 10 {
		return fmt.Errorf("suggestion-attempts must be between 1 and 10 (received %d)", input.SuggestionAttempts)
	}
	cfg.SuggestionAttempts = input.SuggestionAttempts
	if cfg.SuggestionBackoff == 0 {
		cfg.SuggestionBackoff = DefaultSuggestionBackoff
	}
	return nil
}

// validateScanInputs checks concurrency and scan window settings.
func validateScanInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxConcurrent < 1 || input.MaxConcurrent > MaxConcurrentLimit {
		return fmt.Errorf("max-concurrent must be between 1 and %d (received %d)", MaxConcurrentLimit, input.MaxConcurrent)
	}
	cfg.MaxConcurrent = input.MaxConcurrent

	lookback, err := ParseLookbackDuration(input.Lookback)
	if err != nil {
		return fmt.Errorf("invalid lookback: %w", err)
	}
	cfg.Lookback = lookback

	if input.ScanLimit < 1 || input.ScanLimit > MaxScanLimit {
		return fmt.Errorf("scan-limit must be between 1 and %d (received %d)", MaxScanLimit, input.ScanLimit)
	}
	cfg.ScanLimit = input.ScanLimit

	interval, err := time.ParseDuration(strings.TrimSpace(input.Interval))
	if err != nil || interval < time.Minute {
		return fmt.Errorf("interval must be a Go duration of at least 1m (received %q)", input.Interval)
	}
	cfg.Interval = interval
	return nil
}

// validateOutputInputs checks presentation settings.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Language = strings.TrimSpace(input.Language)
	cfg.ServeAddr = input.ServeAddr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Limit < 1 || input.Limit > 1000 {
		return fmt.Errorf("limit must be between 1 and 1000 (received %d)", input.Limit)
	}
	cfg.ListLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}
	return nil
}

// validateLogInputs checks the logger settings.
func validateLogInputs(cfg *Config, input *ConfigRawInput) error {
	if err := cfg.LogLevel.UnmarshalText([]byte(input.LogLevel)); err != nil {
		return fmt.Errorf("invalid log-level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log-format '%s'. must be text, json", input.LogFormat)
	}
	cfg.DetailedLogging = input.DetailedLogging
	if cfg.DetailedLogging {
		cfg.LogLevel = slog.LevelDebug
	}
	return nil
}

// ValidateStoreInputs checks the storage backend settings.
func ValidateStoreInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for the host:port address")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// resolveGitPath resolves the Git repository root from the user-provided path.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	if info, statErr := os.Stat(absSearchPath); statErr == nil && !info.IsDir() {
		absSearchPath = filepath.Dir(absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, absSearchPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
