package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/abiosoft/readline"
	"github.com/charmbracelet/log"
	"github.com/josephlewis42/jsh/commands"
	"github.com/josephlewis42/jsh/core/config"
	"github.com/josephlewis42/jsh/core/jobs"
	"github.com/josephlewis42/jsh/core/logger"
	"github.com/josephlewis42/jsh/core/syntax"
	"github.com/josephlewis42/jsh/core/vos"
	"github.com/spf13/afero"
)

const (
	EnvHome     = "HOME"
	EnvPWD      = "PWD"
	EnvOldPWD   = "OLDPWD"
	EnvPath     = "PATH"
	EnvHostname = "HOSTNAME"
	EnvUser     = "USER"

	DefaultPrompt      = `\u@\h:\w\$ `
	ContinuationPrompt = "> "
)

// Reexec describes how the shell starts a copy of itself to run a subtree in
// a new process. The printed subtree, the parent's pid, $? and $! are
// appended to Args.
type Reexec struct {
	Path string
	Args []string
}

// Options configure a new Shell. Zero values select the process defaults.
type Options struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	Env vos.VEnv
	Fs  afero.Fs

	// Interactive enables prompts, job announcements and background reaping.
	Interactive bool
	// JobControl is one of config.JobControlAuto, On or Off.
	JobControl string

	Reexec Reexec
	Config *config.Configuration
	Log    *log.Logger
	Events *logger.SessionLogger
}

// Shell is one shell session: its environment, job table and the state the
// special parameters expand to.
type Shell struct {
	Env vos.VEnv
	Fs  afero.Fs

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// stdio holds the streams builtins use, redirected while one runs.
	stdio vos.VIO

	Jobs       *jobs.Table
	Controller *jobs.Controller
	// Terminal is nil when job control is off.
	Terminal *jobs.Terminal

	Interactive bool

	ShellPid       int
	LastStatus     int
	LastBackground int

	Reexec Reexec
	Config *config.Configuration
	Log    *log.Logger
	Events *logger.SessionLogger

	Readline *readline.Instance
	history  []string

	exited   bool
	exitCode int
}

// NewShell creates a session. With job control enabled it waits until it is
// in the foreground and takes the terminal.
func NewShell(opts Options) (*Shell, error) {
	s := &Shell{
		Env:         opts.Env,
		Fs:          opts.Fs,
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		Interactive: opts.Interactive,
		ShellPid:    os.Getpid(),
		Reexec:      opts.Reexec,
		Config:      opts.Config,
		Log:         opts.Log,
		Events:      opts.Events,
	}

	if s.Env == nil {
		s.Env = vos.NewProcessEnv()
	}
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	if s.Config == nil {
		s.Config = config.Default()
	}
	if s.Log == nil {
		s.Log = log.New(io.Discard)
	}
	if s.Events == nil {
		s.Events = logger.NewDiscardLogger().Sessionless()
	}
	s.stdio = vos.NewVIOAdapter(s.Stdin, s.Stdout, s.Stderr)

	if err := s.setupJobControl(opts.JobControl); err != nil {
		return nil, err
	}
	s.Controller = jobs.NewController(s.Terminal, s.Stdout, s.Log)
	s.Controller.Quiet = !s.Interactive
	s.Jobs = s.Controller.Jobs

	if wd, err := os.Getwd(); err == nil {
		_ = s.Env.Setenv(EnvPWD, wd)
	}

	return s, nil
}

func (s *Shell) setupJobControl(mode string) error {
	switch mode {
	case config.JobControlOff, "":
		return nil
	case config.JobControlAuto:
		if !s.Interactive || !commands.IsTerminal(s.Stdin) {
			return nil
		}
	}

	term := jobs.NewTerminal(s.Stdin, s.Log)
	if err := term.Acquire(); err != nil {
		if mode == config.JobControlOn {
			return fmt.Errorf("job control: %w", err)
		}
		s.Log.Warn("job control disabled", "err", err)
		return nil
	}

	s.Terminal = term
	return nil
}

// Close gives up the terminal and saves history.
func (s *Shell) Close() error {
	s.Terminal.Release()
	if s.Readline != nil {
		return s.Readline.Close()
	}
	return nil
}

// Stdio returns the streams builtins read and write.
func (s *Shell) Stdio() vos.VIO {
	return s.stdio
}

// Exit asks the shell to stop after the current command with code.
func (s *Shell) Exit(code int) {
	s.exited = true
	s.exitCode = code
}

// Exited reports whether exit was called and with which code.
func (s *Shell) Exited() (bool, int) {
	return s.exited, s.exitCode
}

// lookup resolves parameters for word expansion.
func (s *Shell) lookup(name string) string {
	switch name {
	case "?":
		return strconv.Itoa(s.LastStatus)
	case "$":
		return strconv.Itoa(s.ShellPid)
	case "!":
		if s.LastBackground == 0 {
			return ""
		}
		return strconv.Itoa(s.LastBackground)
	}
	return s.Env.Getenv(name)
}

// RunCommand parses and executes one line, returning its exit status. A
// syntax error is reported and sets $? to 2 without running anything.
func (s *Shell) RunCommand(ctx context.Context, line string) int {
	node, err := syntax.Parse(line)
	if err != nil {
		fmt.Fprintf(s.Stderr, "jsh: %v\n", err)
		s.Events.Record(&logger.SyntaxError{Line: line, Error: err.Error()})
		s.LastStatus = 2
		return s.LastStatus
	}
	if node == nil {
		return s.LastStatus
	}

	s.Events.Record(&logger.CommandLine{Line: line})
	status := s.Execute(ctx, node)
	if s.exited {
		status = s.exitCode
	}
	s.Events.Record(&logger.ExitStatus{Line: line, Status: status})
	return status
}

func (s *Shell) reportError(err error) {
	fmt.Fprintf(s.Stderr, "jsh: %v\n", err)
}

func (s *Shell) recordJob(job *jobs.Job) {
	s.Log.Debug("job", "id", job.ID, "pgid", job.Pgid, "state", job.State, "command", job.Command)
	s.Events.Record(&logger.JobChange{
		ID:      job.ID,
		Pgid:    job.Pgid,
		Command: job.Command,
		State:   job.State.String(),
	})
}
