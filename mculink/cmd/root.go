// Package cmd provides the command-line interface for MCULink.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "mculink",
	Short: "MCULink CLI tool can run and inspect inter-processor message " +
		"channel sessions.",
	Long: `MCULink CLI tool can run and inspect inter-processor message ` +
		`channel sessions. Currently, it supports running a demonstration ` +
		`producer/consumer session with optional monitoring and tracing.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	cobra.OnInitialize(loadEnvFile)

	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}

// loadEnvFile reads an optional .env file so that MCULINK_* variables can be
// kept next to the binary. A missing file is fine.
func loadEnvFile() {
	_ = godotenv.Load()
}
