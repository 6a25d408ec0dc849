package commands

import (
	"github.com/spf13/cobra"
)

// Classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [sequence...]",
	Short: "Classify sequences as code or not code",
	Long: `Send one or more sequences through the proxy and print the label of each.

Sequences come from the arguments, or one per line from --file. Use
--file - to read standard input. Requests are sent concurrently so the
proxy can batch them.`,
	Example: `  # Classify two sequences
  sluicectl classify "print(1)" "hello there"

  # Classify lines from stdin
  cat inputs.txt | sluicectl classify --file -`,
	// RunE will be set by the main package that imports this
}

// SetupClassifyFlags configures flags for the classify command
func SetupClassifyFlags(filePtr *string, concurrencyPtr *int) {
	classifyCmd.Flags().StringVarP(filePtr, "file", "f", "",
		"Read one sequence per line from this file (- for stdin)")
	classifyCmd.Flags().IntVarP(concurrencyPtr, "concurrency", "c", 5,
		"Maximum requests in flight")
}

// GetClassifyCommand returns the classify command for handler assignment
func GetClassifyCommand() *cobra.Command {
	return classifyCmd
}
