package main

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/keron/kern"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [system description file]",
	Short: "Print the object identities and hunk pool layout.",
	Long: "`layout [file]` finalizes a JSON system description and " +
		"prints the identity of every configured object together with " +
		"the computed hunk pool layout. If no file is given, " +
		"KERON_SYSTEM_FILE is used.",
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

		printLayout(table)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

func printLayout(table *kern.ObjectTable) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TASK\tNAME\tPRIORITY\tSTACK HUNK\tACTIVE AT BOOT")
	for i := 0; i < table.NumTasks(); i++ {
		t := table.Task(kern.TaskID(i))
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%v\n",
			i, t.Name, t.Priority, t.StackHunk, t.ActiveAtBoot)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EVENT GROUP\tNAME\tINITIAL BITS")
	for i := 0; i < table.NumEventGroups(); i++ {
		eg := table.EventGroupAttr(kern.EventGroupID(i))
		fmt.Fprintf(w, "%d\t%s\t%#x\n", i, eg.Name, uint32(eg.InitialBits))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "HUNK\tOFFSET\tSIZE\tALIGN")
	for i := 0; i < table.NumHunks(); i++ {
		h := table.Hunk(kern.HunkID(i))
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", i, h.Offset, h.Size, h.Align)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "INTERRUPT LINE\tENABLED AT BOOT")
	for _, irq := range table.Interrupts() {
		fmt.Fprintf(w, "%d\t%v\n", irq.Line, irq.EnabledAtBoot)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Hunk pool: %d bytes, align %d\n",
		table.HunkPoolSize(), table.HunkPoolAlign())

	w.Flush()
}
