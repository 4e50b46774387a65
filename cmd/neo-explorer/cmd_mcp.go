package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	neomcp "github.com/ajitpratap0/neo-explorer/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  get_neo           look up an object by designation or name
  query_approaches  filter close approaches
  database_stats    counts and time span of the loaded data

If the extracts cannot be loaded the server still starts;
individual tool calls will return MCP error responses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			var catalog neomcp.Catalog
			db, loadErr := loadDatabase(logger)
			if loadErr != nil {
				logger.Error("mcp: failed to load database; tool calls will fail", "error", loadErr)
			} else {
				catalog = db
			}

			srv := neomcp.NewServer(catalog, version, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: neo-explorer MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
