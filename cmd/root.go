package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cleanscore/core"
	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/huangsam/cleanscore/internal/iocache"
	"github.com/huangsam/cleanscore/internal/llm"
	"github.com/huangsam/cleanscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// storeManager is the global persistence manager instance.
var storeManager contract.StoreManager = iocache.Manager

// logger is installed once configuration is validated.
var logger = contract.DiscardLogger()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "cleanscore",
	Short: "Rate the clean code quality of Git commits with a local language model.",
	Long: `Cleanscore sends every source file changed by a commit to a local Ollama model,
scores it on five clean code criteria and stores the verdicts for later review.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".cleanscore") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("CLEANSCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("repo", ".")
	viper.SetDefault("ollama-url", contract.DefaultOllamaURL)
	viper.SetDefault("model", contract.DefaultModel)
	viper.SetDefault("temperature", contract.DefaultTemperature)
	viper.SetDefault("analysis-timeout", contract.DefaultAnalysisTimeoutSecs)
	viper.SetDefault("suggestions-timeout", contract.DefaultSuggestionTimeoutSecs)
	viper.SetDefault("health-timeout", contract.DefaultHealthTimeoutSecs)
	viper.SetDefault("max-json-fix-retries", contract.DefaultMaxJSONFixRetries)
	viper.SetDefault("suggestion-attempts", contract.DefaultSuggestionAttempts)
	viper.SetDefault("max-concurrent", contract.DefaultMaxConcurrent)
	viper.SetDefault("lookback", contract.DefaultLookback)
	viper.SetDefault("scan-limit", contract.DefaultScanLimit)
	viper.SetDefault("interval", contract.DefaultInterval)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("color", "yes")
	viper.SetDefault("limit", contract.DefaultListLimit)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("addr", contract.DefaultServeAddr)
}

// loadSettings merges file, env and flags, then validates everything that does not need Git.
func loadSettings() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Validate and install the process-wide logger and color mode.
	if err := contract.ProcessSettings(cfg, input); err != nil {
		return err
	}
	logger = contract.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	color.NoColor = !cfg.UseColors
	return nil
}

// sharedSetup validates the full configuration, resolves the repository and opens the store.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	if err := loadSettings(); err != nil {
		return err
	}
	if err := contract.ProcessAndValidate(ctx, cfg, contract.NewLocalGitClient(), input); err != nil {
		return err
	}
	return initStore(ctx)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// storeSetup is the minimal setup of commands that read stored analyses.
// A repository is resolved when available so abbreviated hashes can be expanded.
func storeSetup(ctx context.Context) error {
	if err := loadSettings(); err != nil {
		return err
	}
	if err := contract.ProcessAndValidate(ctx, cfg, contract.NewLocalGitClient(), input); err != nil {
		logger.Debug("no repository resolved", "repo", input.RepoPathStr, "err", err)
		cfg.RepoPath = ""
	}
	return initStore(ctx)
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store readers.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup(rootCtx)
}

func initStore(ctx context.Context) error {
	if err := iocache.InitStores(ctx, cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// newOrchestrator wires the git client, the model service and the store.
func newOrchestrator() *core.Orchestrator {
	client := llm.NewClient(cfg, logger)
	service := llm.NewService(client, cfg, logger)
	return core.NewOrchestrator(cfg, contract.NewLocalGitClient(), service, storeManager.GetAnalysisStore(), client, logger)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetStoreManager sets the global store manager.
func SetStoreManager(mgr contract.StoreManager) {
	storeManager = mgr
}
