// Package main provides the resume_editor CLI: document migration, pagination
// and the editing API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:   "resume_editor",
	Short: "Resume editor document engine",
	Long: `Resume editor document engine: lifts stored resumes of any editor version into the current schema,
paginates rendered content into fixed-height pages, and serves editing sessions over HTTP.

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log output mode: dev or prod")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
