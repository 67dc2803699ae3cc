// Package cmd defines the command-line interface for cleanscore.
package cmd

import (
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("repo", ".", "Path inside the Git repository to analyze")
	flags.String("ollama-url", contract.DefaultOllamaURL, "Base URL of the Ollama server")
	flags.String("model", contract.DefaultModel, "Model used for analysis and suggestions")
	flags.Float64("temperature", contract.DefaultTemperature, "Sampling temperature sent to the model")
	flags.Int("analysis-timeout", contract.DefaultAnalysisTimeoutSecs, "Seconds allowed for one file analysis request")
	flags.Int("suggestions-timeout", contract.DefaultSuggestionTimeoutSecs, "Seconds allowed for one suggestions request")
	flags.Int("health-timeout", contract.DefaultHealthTimeoutSecs, "Seconds allowed for the model server health probe")
	flags.Int("max-json-fix-retries", contract.DefaultMaxJSONFixRetries, "Repair rounds for malformed model replies")
	flags.Int("suggestion-attempts", contract.DefaultSuggestionAttempts, "Attempts for a failing suggestions request")
	flags.Int("max-concurrent", contract.DefaultMaxConcurrent, "Files analyzed concurrently per commit")
	flags.String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	flags.String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for notes")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("log-level", "info", "Log level: debug or info or warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.Bool("detailed-logging", false, "Log prompts and model replies (implies debug)")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scanCmd to Viper
	scanCmd.Flags().String("lookback", contract.DefaultLookback, "How far back to look for commits (e.g., '7 days', '2 weeks')")
	scanCmd.Flags().Int("scan-limit", contract.DefaultScanLimit, "Maximum commits analyzed per cycle")
	scanCmd.Flags().String("interval", contract.DefaultInterval, "Time between cycles with --watch")
	scanCmd.Flags().Bool("watch", false, "Keep scanning every interval until interrupted")
	if err := viper.BindPFlags(scanCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scan flags", err)
	}

	// Bind all flags of listCmd to Viper
	listCmd.Flags().IntP("limit", "l", contract.DefaultListLimit, "Number of analyses to display")
	listCmd.Flags().String("language", "", "Only list commits whose dominant language matches")
	if err := viper.BindPFlags(listCmd.Flags()); err != nil {
		contract.LogFatal("Error binding list flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
