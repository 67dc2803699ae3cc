package cmd

import (
	"github.com/huangsam/cleanscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the cleanscore MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents analyze commits and read
stored analyses through standard tools.`,
	// Logs go to stderr so stdio stays reserved for the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, newOrchestrator(), storeManager)
	},
}
