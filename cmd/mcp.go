package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gitattrib/gitattrib/internal/contract"
	"github.com/gitattrib/gitattrib/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the gitattrib MCP server",
	Long:  `Launch an MCP server that allows AI agents to run contribution analysis via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Settings and persistence are resolved up front; the protocol itself
		// owns stdio from here on.
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, contract.NewLocalGitClient(), cacheManager)
	},
}
