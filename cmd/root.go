package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "jira-mcp-server",
	Short: "An MCP server exposing Jira as tools",
	Long: `jira-mcp-server bridges the Model Context Protocol and Jira Server /
Data Center. It exposes issue tracking, catalog lookups, and agile board
operations as MCP tools over stdio or HTTP.

Connection settings come from a YAML settings file, environment variables
(JIRA_URL, JIRA_USERNAME, JIRA_PASSWORD, ...), or both; environment
variables win.`,
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML settings file (optional)")
}
