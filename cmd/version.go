package cmd

import (
	"runtime"

	"github.com/huangsam/cleanscore/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd prints build details and the model defaults baked into this build.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cleanscore.",
	Long: `Display build details of cleanscore and the model it talks to by default.

Override the model settings with --ollama-url and --model, or with
CLEANSCORE_OLLAMA_URL and CLEANSCORE_MODEL.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("cleanscore %s (%s, built %s, %s)\n", version, commit, date, runtime.Version())
		cmd.Printf("  Default Ollama URL: %s\n", contract.DefaultOllamaURL)
		cmd.Printf("  Default model:      %s\n", contract.DefaultModel)
		cmd.Printf("  Default store:      %s\n", contract.GetAnalysisDBFilePath())
	},
}
