package commands

import (
	"fmt"
	"os"

	"github.com/josephlewis42/jsh/core/vos"
)

// Pwd implements the UNIX pwd command.
func Pwd(stdio vos.VIO, args []string) int {
	cmd := &SimpleCommand{
		Use:   "pwd",
		Short: "Print the name of the current working directory.",
	}

	return cmd.Run(stdio, args, func() int {
		if len(cmd.Flags().Args()) > 0 {
			fmt.Fprintln(stdio.Stderr(), "pwd: too many arguments")
			return 1
		}

		pwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(stdio.Stderr(), "pwd: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdio.Stdout(), pwd)

		return 0
	})
}

var _ CommandFunc = Pwd

func init() {
	addCmd("pwd", "pwd", Pwd)
}
