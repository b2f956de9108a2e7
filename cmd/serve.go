package cmd

import (
	"fmt"

	mcpserver "github.com/lukman83/skinscout/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting skinscout MCP server on stdio...")

	if err := mcpserver.Serve(a.service, logger); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
