package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/spigell/autofill/internal/trigger"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the supported actions",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s (%s)\n", app, version, runtime.Version())
		fmt.Printf("actions: %v\n", trigger.Actions())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
