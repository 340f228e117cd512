package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [system description file]",
	Short: "Validate a system description.",
	Long: "`check [file]` runs a JSON system description through the " +
		"configuration engine and reports every violated constraint. " +
		"If no file is given, KERON_SYSTEM_FILE is used.",
	Run: func(cmd *cobra.Command, args []string) {
		path, ok := descriptionFile(args)
		if !ok {
			log.Fatalf("Error: no system description file given.")
		}

		desc, err := loadDescription(path)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		table, err := buildFromDescription(desc)
		if err != nil {
			log.Fatalf("Configuration is invalid:\n%v", err)
		}

		fmt.Printf(
			"Configuration is valid: %d tasks, %d event groups, "+
				"%d hunks, %d interrupt lines, hunk pool %d bytes.\n",
			table.NumTasks(), table.NumEventGroups(), table.NumHunks(),
			len(table.Interrupts()), table.HunkPoolSize(),
		)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
