// Package commands defines the budgetsync CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetsync-dev/budgetsync/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "budgetsync",
		Short:   "Import bank statements into your budget",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}
