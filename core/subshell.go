package core

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/josephlewis42/jsh/core/config"
)

// RunSubshell is the entry point of a re-executed shell. args holds the
// printed subtree, the parent's pid, $? and $!. The subtree runs without job
// control and the process exits with its status.
func RunSubshell(opts Options, args []string) int {
	if len(args) != 4 {
		fmt.Fprintf(os.Stderr, "jsh: subshell: expected 4 arguments, got %d\n", len(args))
		return 2
	}

	var specials [3]int
	for i, arg := range args[1:] {
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jsh: subshell: %v\n", err)
			return 2
		}
		specials[i] = n
	}

	opts.Interactive = false
	opts.JobControl = config.JobControlOff
	s, err := NewShell(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
		return 1
	}
	defer s.Close()

	s.ShellPid = specials[0]
	s.LastStatus = specials[1]
	s.LastBackground = specials[2]

	return s.RunCommand(context.Background(), args[0])
}
