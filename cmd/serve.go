package cmd

import (
	"os"

	"github.com/jywlabs/skync/internal/mcpserver"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serve skills to an MCP client over stdio.

Tools:
  list_skills    List every skill found in the configured sources
  read_skill     Return the SKILL.md of a skill by name

Every request rescans the sources, so new skills appear without a restart.
Logs go to stderr; stdout carries only protocol messages.

Example client entry:
  {"command": "skync", "args": ["serve"]}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return mcpserver.Serve(cmd.Context(), cfg, Version, os.Stdin, os.Stdout)
}
