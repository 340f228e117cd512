package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "keron",
	Short: "Keron CLI tool can perform common tasks related to building " +
		"systems with Keron.",
	Long: `Keron CLI tool can perform common tasks related to building ` +
		`systems with Keron. Currently, it supports validating system ` +
		`descriptions and printing the resulting object and hunk layout.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// descriptionFile resolves the system description path from the command
// arguments, falling back to the KERON_SYSTEM_FILE environment variable.
func descriptionFile(args []string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}

	path := os.Getenv("KERON_SYSTEM_FILE")
	return path, path != ""
}
