// Package main provides the jobpilot CLI: discover job postings, score them
// against a candidate profile, and drive semi-automated applications.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobpilot",
	Short: "Job discovery, matching, and application assistant",
	Long:  "jobpilot aggregates postings from job boards and career pages, deduplicates them, ranks them against your profile, and walks applications through platform forms with a human confirmation before every submit.",
}

var (
	configPath string
	verbose    bool
	jsonLog    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Emit logs as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
