package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/iocache"
	"github.com/huangsam/cleanscore/internal/outwriter"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settingsOnly validates configuration without opening the store.
// Clear and migrate must run against a database nobody else holds open.
func settingsOnly(_ *cobra.Command, _ []string) error {
	return loadSettings()
}

// storeCmd focuses on analysis store management.
//
// Note: store subcommands do not require a Git repository.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the analysis store",
	Long: `Manage the database that keeps every commit analysis.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all stored analyses
  migrate - Run database schema migrations`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, connection state, number of stored analyses and file ratings,
the oldest and newest analysis dates and the row count of every table.

Examples:
  cleanscore store status
  cleanscore store status --store-backend postgresql --store-db-connect "host=db dbname=cleanscore"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetAnalysisStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		if err := outwriter.NewOutWriter().WriteStoreStatus(status, cfg); err != nil {
			contract.LogFatal("Cannot write store status", err)
		}
	},
}

// storeClearCmd removes every stored analysis.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored analysis",
	Long: `Delete every stored commit analysis and file rating.

For SQLite the database file is removed. For MySQL and PostgreSQL the analysis
tables and the migration history are dropped.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  cleanscore store export --output-file backup
  cleanscore store clear`,
	PreRunE: settingsOnly,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := contract.GetAnalysisDBFilePath()
		if cfg.StoreBackend == schema.SQLiteBackend && cfg.StoreDBConnect != "" {
			dbFilePath = cfg.StoreDBConnect
		}
		if err := iocache.ClearAnalysis(rootCtx, cfg.StoreBackend, dbFilePath, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear stored analyses", err)
		}
		fmt.Println("Stored analyses cleared successfully.")
	},
}

// storeExportCmd exports stored analyses to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored analyses to Parquet for BI tools and analytics",
	Long: `Export every stored analysis to Parquet files named after --output-file:
- <prefix>.commit_analyses.parquet - one row per commit
- <prefix>.file_ratings.parquet    - one row per rated file
- <prefix>.suggestions.parquet     - one row per suggestion

Requires: --output-file parameter

Examples:
  cleanscore store export --output-file cleanscore
  duckdb -c "SELECT language, avg(note) FROM 'cleanscore.commit_analyses.parquet' GROUP BY 1"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := iocache.ExecuteAnalysisExport(rootCtx, storeManager.GetAnalysisStore(), cfg.OutputFile)
		if err != nil {
			contract.LogFatal("Failed to export stored analyses", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Exported %d analyses to %s\n", result.Analyses, result.AnalysesFile)
		fmt.Fprintf(os.Stderr, "💾 Exported %d file ratings to %s\n", result.FileRatings, result.FileRatingsFile)
		fmt.Fprintf(os.Stderr, "💾 Exported %d suggestions to %s\n", result.Suggestions, result.SuggestionsFile)
	},
}

// storeMigrateCmd runs database migrations for the analysis store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the analysis store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  cleanscore store migrate

  # Rollback everything
  cleanscore store migrate --target-version 0`,
	PreRunE: settingsOnly,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := iocache.MigrateAnalysis(cfg.StoreBackend, cfg.StoreDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(result.String())
	},
}
