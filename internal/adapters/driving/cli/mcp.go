package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose order queries to AI assistants",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server with the tools list_environments,
list_categories, classify_text and query_orders.

Without --port the server speaks JSON-RPC on stdin/stdout, which is what
desktop assistants launch. With --port it serves streamable HTTP. The
serve command also mounts the same endpoint at /mcp on the HTTP API.

Examples:
  infoflex-bridge mcp serve
  infoflex-bridge mcp serve --port 8081

Assistant configuration:
  {
    "mcpServers": {
      "infoflex": {
        "command": "/usr/local/bin/infoflex-bridge",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newMCPServer builds the MCP adapter over the active services.
func newMCPServer(s *Services) (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Ports{
		Registry:   s.Registry,
		Classifier: s.Classifier,
		Orders:     s.Orders,
	}, version)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	s, err := current()
	if err != nil {
		return err
	}
	server, err := newMCPServer(s)
	if err != nil {
		return err
	}

	if port == 0 {
		return server.Run(cmd.Context())
	}
	addr := fmt.Sprintf(":%d", port)
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
