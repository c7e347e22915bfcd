package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joescharf/studyplan/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for AI assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an AI assistant manage candidate sessions and run the optimizer
natively. Configure with:

  {
    "mcpServers": {
      "studyplan": { "command": "studyplan", "args": ["mcp"] }
    }
  }

Available tools: plan_add_session, plan_list_sessions, plan_remove_session,
plan_clear_sessions, plan_optimize`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		gap, err := configuredGap()
		if err != nil {
			return err
		}

		srv := mcp.NewServer(s, gap)
		return srv.ServeStdio(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
