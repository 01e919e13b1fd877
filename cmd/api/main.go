package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version 由 -ldflags "-X main.version=..." 注入
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "recipe-explorer",
	Short: "Recipe CRUD API with TheMealDB enrichment",
	Long: `recipe-explorer serves a JSON API and HTML pages for managing recipes held in memory.
Searches are merged with results from TheMealDB, and request timings are exposed at /api/metrics and /metrics.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "recipe-explorer", version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, validateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
