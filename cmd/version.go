package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const serverVersion = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jira-mcp-server %s\n", serverVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
