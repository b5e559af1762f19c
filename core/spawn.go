package core

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"syscall"

	"github.com/josephlewis42/jsh/core/logger"
	"github.com/josephlewis42/jsh/core/syntax"
	"github.com/josephlewis42/jsh/core/vos"
)

// Process group choices for spawn.
const (
	// inheritGroup leaves the child in the shell's process group.
	inheritGroup = -1
	// newGroup makes the child the leader of a new group.
	newGroup = 0
)

// ErrNotOSFile is returned when a stream can't be handed to a child process.
var ErrNotOSFile = errors.New("not an operating system file")

// ErrNoReexec is returned when a subtree needs a new process but the shell
// doesn't know how to start itself.
var ErrNoReexec = errors.New("subshells are unavailable")

// process is a program ready to start: either an external command or the
// shell itself running a printed subtree.
type process struct {
	name  string
	path  string
	argv  []string
	files stdio
	close func()
}

// prepare resolves a unit into a process. External commands are looked up and
// have their redirections opened here; builtins and compound nodes run in a
// re-executed shell which applies its own redirections. A nil process means
// the unit can't start and the status says why; the error is already
// reported.
func (s *Shell) prepare(node syntax.Node, files stdio) (*process, int) {
	// The new process already isolates a subshell.
	for {
		sub, ok := node.(*syntax.Subshell)
		if !ok {
			break
		}
		node = sub.Child
	}

	if cmd, ok := node.(*syntax.Command); ok {
		args := s.expandArgs(cmd)
		if _, builtin := AllBuiltins[safeHead(args)]; len(args) > 0 && !builtin {
			return s.prepareProgram(cmd, args, files)
		}
	}

	if s.Reexec.Path == "" {
		s.reportError(ErrNoReexec)
		return nil, 1
	}

	argv := append([]string{}, s.Reexec.Args...)
	argv = append(argv,
		syntax.Print(node),
		strconv.Itoa(s.ShellPid),
		strconv.Itoa(s.LastStatus),
		strconv.Itoa(s.LastBackground),
	)
	return &process{
		name:  "jsh",
		path:  s.Reexec.Path,
		argv:  argv,
		files: files,
		close: func() {},
	}, 0
}

func safeHead(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (s *Shell) prepareProgram(cmd *syntax.Command, args []string, files stdio) (*process, int) {
	path, err := vos.LookPath(s.Fs, s.Env, args[0])
	if err != nil {
		s.Events.Record(&logger.UnknownCommand{Command: args, Error: err.Error()})
		if errors.Is(err, vos.ErrNotFound) {
			fmt.Fprintf(s.Stderr, "jsh: %s: command not found\n", args[0])
			return nil, 127
		}
		fmt.Fprintf(s.Stderr, "jsh: %s: %v\n", args[0], err)
		return nil, 1
	}

	files, closeFiles, err := s.redirect(files, cmd.Redirects)
	if err != nil {
		s.reportError(err)
		return nil, 1
	}

	return &process{
		name:  args[0],
		path:  path,
		argv:  args,
		files: files,
		close: closeFiles,
	}, 0
}

// spawn starts p in process group pgid (inheritGroup, newGroup or an
// existing group). A foreground child under job control takes the terminal
// before it runs. Signals the shell catches are reset to their defaults by
// exec, so children start with the default dispositions.
func (s *Shell) spawn(p *process, pgid int, foreground bool) (int, error) {
	fds := make([]uintptr, len(p.files))
	for i, f := range p.files {
		osFile, ok := f.(interface{ Fd() uintptr })
		if !ok {
			return 0, fmt.Errorf("%s: %w", f.Name(), ErrNotOSFile)
		}
		fds[i] = osFile.Fd()
	}

	sys := &syscall.SysProcAttr{}
	if pgid != inheritGroup {
		sys.Setpgid = true
		sys.Pgid = pgid
	}
	if foreground && s.Terminal != nil {
		sys.Foreground = true
		sys.Ctty = s.Terminal.Fd()
	}

	pid, err := syscall.ForkExec(p.path, p.argv, &syscall.ProcAttr{
		Env:   s.Env.Environ(),
		Files: fds,
		Sys:   sys,
	})
	runtime.KeepAlive(p.files)
	if err != nil {
		return 0, err
	}

	s.Log.Debug("spawned", "pid", pid, "pgid", pgid, "argv", p.argv, "foreground", foreground)
	return pid, nil
}

// spawnFailed reports a process that couldn't be started. Failing to run
// the program image is 127 like a missing command, anything else is a
// resource error.
func (s *Shell) spawnFailed(p *process, err error) int {
	s.Log.Debug("spawn failed", "argv", p.argv, "err", err)

	switch {
	case errors.Is(err, syscall.ENOENT):
		fmt.Fprintf(s.Stderr, "jsh: %s: command not found\n", p.name)
		return 127
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.ENOEXEC), errors.Is(err, syscall.ENOTDIR):
		fmt.Fprintf(s.Stderr, "jsh: %s: %v\n", p.name, err)
		return 127
	}

	fmt.Fprintf(s.Stderr, "jsh: %s: %v\n", p.name, err)
	return 1
}
