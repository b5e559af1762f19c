package cmd

import (
	"os"

	"github.com/josephlewis42/jsh/core"
	"github.com/josephlewis42/jsh/core/config"
	"github.com/spf13/cobra"
)

// subshellCmd runs a subtree handed over by a parent shell. Its arguments are
// produced by the shell, never typed by users.
var subshellCmd = &cobra.Command{
	Use:                "__subshell COMMAND PID STATUS BACKGROUND",
	Hidden:             true,
	DisableFlagParsing: true,
	Args:               cobra.ExactArgs(4),
}

func init() {
	// Run is assigned here because reexec refers back to subshellCmd.
	subshellCmd.Run = func(cmd *cobra.Command, args []string) {
		exitStatus = core.RunSubshell(core.Options{
			Reexec: reexec(),
			Config: config.Default(),
			Log:    newLogger(os.Stderr, config.Default().LogLevel),
		}, args)
	}
	rootCmd.AddCommand(subshellCmd)
}
