// Package main provides the jobcoach command: the AI adapter server, its
// database migrations and a command-line client.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobcoach",
	Short: "Job search assistant AI adapter",
	Long: `jobcoach serves the AI use-case endpoints (skill gap, resume optimization, cover letter,
interview questions, application insight, networking tips) and stores application and contact records.`,
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (environment variables override file values)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
