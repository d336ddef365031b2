package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so pipeline agents can record
lineage through tool calls.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead. When --port is not given, mcp.port from the
configuration is used; 0 means stdio.

Examples:
  # Stdio mode (default)
  ragledger mcp serve

  # HTTP mode
  ragledger mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if !cmd.Flags().Changed("port") && settingsService != nil {
		port = settingsService.Get().MCP.Port
	}

	ports := &mcp.Ports{
		Documents: documentRegistry,
		Runs:      runTracker,
		Errors:    errorLedger,
		Artifacts: artifactService,
		Reviews:   reviewQueue,
		Search:    searchProjection,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
