// Package cli implements the taskify commands.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the taskify command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskify",
		Short: "Taskify is a task tracking backend",
		Long: `Taskify serves the task tracking HTTP API: signup, login, logout and
password change, plus per-user task CRUD and counts. Configuration is read
from environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newMigrateCommand(), newVersionCommand())
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
