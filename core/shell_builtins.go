package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/jsh/commands"
	"github.com/josephlewis42/jsh/core/jobs"
	"github.com/josephlewis42/jsh/core/syntax"
	"golang.org/x/sys/unix"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// builtinUsage holds the one line synopsis help prints for each builtin.
var builtinUsage = make(map[string]string)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

func addBuiltin(name, usage string, fn ShellBuiltinFunc) {
	AllBuiltins[name] = fn
	builtinUsage[name] = usage
}

// ListBuiltins returns the builtin names in order.
func ListBuiltins() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// leaf adapts a command that only needs its streams and arguments.
func leaf(cmd commands.CommandFunc) ShellBuiltinFunc {
	return func(s *Shell, args []string) int {
		return cmd(s.Stdio(), args)
	}
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	stderr := s.Stdio().Stderr()

	var dir string
	switch len(args) {
	case 1:
		dir = s.Env.Getenv(EnvHome)
		if dir == "" {
			fmt.Fprintf(stderr, "%s: HOME not set\n", args[0])
			return 1
		}
	case 2:
		dir = args[1]
		if dir == "-" {
			dir = s.Env.Getenv(EnvOldPWD)
			if dir == "" {
				fmt.Fprintf(stderr, "%s: OLDPWD not set\n", args[0])
				return 1
			}
			fmt.Fprintln(s.Stdio().Stdout(), dir)
		}
	default:
		fmt.Fprintf(stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	info, err := s.Fs.Stat(dir)
	if err == nil && !info.IsDir() {
		err = unix.ENOTDIR
	}
	if err == nil {
		err = os.Chdir(dir)
	}
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		fmt.Fprintf(stderr, "%s: %s: %v\n", args[0], dir, err)
		return 1
	}

	_ = s.Env.Setenv(EnvOldPWD, s.Env.Getenv(EnvPWD))
	if wd, err := os.Getwd(); err == nil {
		_ = s.Env.Setenv(EnvPWD, wd)
	}
	return 0
}

// Exit quits the shell, by default with the status of the last command.
func Exit(s *Shell, args []string) int {
	code := s.LastStatus
	switch len(args) {
	case 1:
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.Stdio().Stderr(), "%s: %s: numeric argument required\n", args[0], args[1])
			n = 2
		}
		code = int(uint8(n))
	default:
		fmt.Fprintf(s.Stdio().Stderr(), "%s: too many arguments\n", args[0])
		return 1
	}

	s.Exit(code)
	return code
}

// Help lists the builtins.
func Help(s *Shell, args []string) int {
	w := s.Stdio().Stdout()
	fmt.Fprintln(w, "jsh, a job control shell")
	fmt.Fprintln(w, "These shell commands are defined internally.")
	fmt.Fprintln(w)

	for _, name := range ListBuiltins() {
		fmt.Fprintf(w, "  %s\n", builtinUsage[name])
	}
	return 0
}

// Jobs lists the job table.
func Jobs(s *Shell, args []string) int {
	cmd := &commands.SimpleCommand{
		Use:   "jobs [--color=WHEN]",
		Short: "Display status of jobs.",
	}
	printer := &commands.ColorPrinter{}
	printer.Init(cmd.Flags(), s.Stdio().Stdout(), s.Config.Color)

	return cmd.Run(s.Stdio(), args, func() int {
		s.Controller.ReapFinished()

		w := s.Stdio().Stdout()
		for _, job := range s.Jobs.List() {
			state := job.State.String()
			switch job.State {
			case jobs.Running:
				state = printer.Sprintf(commands.ColorBoldGreen, "%s", state)
			case jobs.Stopped:
				state = printer.Sprintf(commands.ColorBoldRed, "%s", state)
			}
			fmt.Fprintf(w, "[%d] %d %s %s\n", job.ID, job.Pgid, state, job.Command)
		}
		return 0
	})
}

// parseJobSpec accepts %N or N. With no argument the latest job is used.
func (s *Shell) parseJobSpec(args []string) (*jobs.Job, error) {
	switch len(args) {
	case 1:
		if job := s.Jobs.Latest(); job != nil {
			return job, nil
		}
		return nil, errors.New("no current job")
	case 2:
	default:
		return nil, errors.New("too many arguments")
	}

	spec := args[1]
	id, err := strconv.Atoi(strings.TrimPrefix(spec, "%"))
	if err != nil {
		return nil, fmt.Errorf("%s: bad job id", spec)
	}
	job := s.Jobs.FindByID(id)
	if job == nil {
		return nil, fmt.Errorf("%s: %w", spec, jobs.ErrNoSuchJob)
	}
	return job, nil
}

// Fg resumes a job in the foreground.
func Fg(s *Shell, args []string) int {
	stderr := s.Stdio().Stderr()
	if s.Terminal == nil {
		fmt.Fprintf(stderr, "%s: no job control\n", args[0])
		return 1
	}

	job, err := s.parseJobSpec(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}

	status, err := s.Controller.BringToForeground(job.ID)
	s.recordJob(job)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return status
}

// Bg resumes a stopped job in the background.
func Bg(s *Shell, args []string) int {
	stderr := s.Stdio().Stderr()
	if s.Terminal == nil {
		fmt.Fprintf(stderr, "%s: no job control\n", args[0])
		return 1
	}

	job, err := s.parseJobSpec(args)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}

	if err := s.Controller.ContinueInBackground(job.ID); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}
	s.recordJob(job)
	return 0
}

const killUsage = "kill: usage: kill [-s SIGNAL | -SIGNAL] <pid|%jobid> ... or kill -l"

// Kill sends a signal to processes or jobs. Options are parsed by hand
// because signal options look like -9 or -TERM.
func Kill(s *Shell, args []string) int {
	stdout, stderr := s.Stdio().Stdout(), s.Stdio().Stderr()
	rest := args[1:]

	if len(rest) > 0 && rest[0] == "-l" {
		for _, name := range jobs.SignalNames() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	sig := unix.SIGTERM
	if len(rest) > 0 {
		spec := ""
		switch {
		case rest[0] == "-s" && len(rest) > 1:
			spec, rest = rest[1], rest[2:]
		case rest[0] == "--":
			rest = rest[1:]
		case len(rest[0]) > 1 && rest[0][0] == '-':
			spec, rest = rest[0][1:], rest[1:]
		}
		if spec != "" {
			parsed, err := jobs.ParseSignal(spec)
			if err != nil {
				fmt.Fprintf(stderr, "kill: %v\n", err)
				return 1
			}
			sig = parsed
		}
	}

	if len(rest) == 0 {
		fmt.Fprintln(stderr, killUsage)
		return 1
	}

	status := 0
	for _, target := range rest {
		if strings.HasPrefix(target, "%") {
			id, err := strconv.Atoi(target[1:])
			job := s.Jobs.FindByID(id)
			if err != nil || job == nil {
				fmt.Fprintf(stderr, "kill: job not found: %s\n", target)
				status = 1
				continue
			}
			if err := s.Controller.Signal(id, sig); err != nil {
				fmt.Fprintf(stderr, "kill: %s: %v\n", target, err)
				status = 1
				continue
			}
			// A stopped job only acts on termination once it runs again.
			if job.State == jobs.Stopped && (sig == unix.SIGTERM || sig == unix.SIGHUP) {
				_ = s.Controller.Signal(id, unix.SIGCONT)
			}
			continue
		}

		pid, err := strconv.Atoi(target)
		if err != nil {
			fmt.Fprintf(stderr, "kill: %s: bad pid\n", target)
			status = 1
			continue
		}
		if err := unix.Kill(pid, sig); err != nil {
			fmt.Fprintf(stderr, "kill: (%d) - %v\n", pid, err)
			status = 1
		}
	}
	return status
}

// Set assigns environment variables, or prints them with no arguments.
func Set(s *Shell, args []string) int {
	if len(args) == 1 {
		w := s.Stdio().Stdout()
		for _, kv := range s.Env.Environ() {
			fmt.Fprintln(w, kv)
		}
		return 0
	}

	status := 0
	for _, assignment := range args[1:] {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok || !syntax.IsName(name) {
			fmt.Fprintln(s.Stdio().Stderr(), "set: usage: set VAR=value")
			status = 1
			continue
		}
		if err := s.Env.Setenv(name, value); err != nil {
			fmt.Fprintf(s.Stdio().Stderr(), "set: %v\n", err)
			status = 1
		}
	}
	return status
}

// Unset removes environment variables.
func Unset(s *Shell, args []string) int {
	cmd := &commands.SimpleCommand{
		Use:   "unset [-v] NAME...",
		Short: "Unset environment variables.",
	}
	cmd.Flags().Bool('v', "treat NAME as a variable")

	return cmd.Run(s.Stdio(), args, func() int {
		names := cmd.Flags().Args()
		if len(names) == 0 {
			fmt.Fprintln(s.Stdio().Stderr(), "unset: usage: unset VAR")
			return 1
		}

		status := 0
		for _, name := range names {
			if !syntax.IsName(name) {
				fmt.Fprintf(s.Stdio().Stderr(), "unset: %s: not a valid identifier\n", name)
				status = 1
				continue
			}
			_ = s.Env.Unsetenv(name)
		}
		return status
	})
}

// History shows or clears the line history.
func History(s *Shell, args []string) int {
	cmd := &commands.SimpleCommand{
		Use:   "history [-c] [N]",
		Short: "Display the history list with line numbers, or the last N lines.",
	}
	clearHistory := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(s.Stdio(), args, func() int {
		if *clearHistory {
			if s.Readline != nil {
				s.Readline.ResetHistory()
			}
			s.history = nil
			return 0
		}

		start := 0
		if rest := cmd.Flags().Args(); len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil || n < 0 {
				fmt.Fprintf(s.Stdio().Stderr(), "history: %s: numeric argument required\n", rest[0])
				return 1
			}
			if n < len(s.history) {
				start = len(s.history) - n
			}
		}

		for i := start; i < len(s.history); i++ {
			fmt.Fprintf(s.Stdio().Stdout(), "% 5d  %s\n", i+1, s.history[i])
		}
		return 0
	})
}

func init() {
	addBuiltin("cd", "cd [dir]", Cd)
	addBuiltin("exit", "exit [code]", Exit)
	addBuiltin("help", "help", Help)
	addBuiltin("jobs", "jobs [--color=WHEN]", Jobs)
	addBuiltin("fg", "fg [%job]", Fg)
	addBuiltin("bg", "bg [%job]", Bg)
	addBuiltin("kill", "kill [-SIGNAL] <pid|%job> ...", Kill)
	addBuiltin("set", "set [NAME=value ...]", Set)
	addBuiltin("unset", "unset NAME...", Unset)
	addBuiltin("history", "history [-c] [N]", History)

	for _, name := range commands.ListCommands() {
		cmd := commands.AllCommands[name]
		addBuiltin(name, cmd.Usage, leaf(cmd.Main))
	}
}
