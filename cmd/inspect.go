package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/ytm-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var inspectCmd = &cobra.Command{
	Use:              "inspect {files}",
	Short:            "Print the tags of downloaded files",
	Args:             cobra.MinimumNArgs(1),
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, paths []string) {
		if !app.ExecuteInspectCommand(cmd.Context(), cmd.OutOrStdout(), paths) {
			os.Exit(1)
		}
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(inspectCmd)
}
