package core

import (
	"context"
	"fmt"
	"os"

	"github.com/josephlewis42/jsh/core/jobs"
	"github.com/josephlewis42/jsh/core/syntax"
	"github.com/spf13/afero"
)

// Execute runs a syntax tree to completion in the foreground and returns its
// exit status, which also becomes $?. Background parts return immediately.
func (s *Shell) Execute(ctx context.Context, node syntax.Node) int {
	if node == nil {
		return s.LastStatus
	}

	status := s.execute(ctx, node)
	s.LastStatus = status
	return status
}

func (s *Shell) execute(ctx context.Context, node syntax.Node) int {
	if err := ctx.Err(); err != nil {
		s.Log.Debug("skipping command", "err", err)
		return 1
	}

	switch n := node.(type) {
	case *syntax.Command:
		return s.execCommand(ctx, n)

	case *syntax.Pipe:
		return s.execPipeline(ctx, n)

	case *syntax.Sequence:
		s.Execute(ctx, n.Left)
		if s.exited {
			return s.exitCode
		}
		return s.Execute(ctx, n.Right)

	case *syntax.And:
		if status := s.Execute(ctx, n.Left); status != 0 || s.exited {
			return status
		}
		return s.Execute(ctx, n.Right)

	case *syntax.Or:
		if status := s.Execute(ctx, n.Left); status == 0 || s.exited {
			return status
		}
		return s.Execute(ctx, n.Right)

	case *syntax.Background:
		return s.execBackground(ctx, n)

	case *syntax.Subshell:
		return s.runForeground(ctx, n)

	case *syntax.Group:
		return s.Execute(ctx, n.Child)
	}

	panic(fmt.Sprintf("jsh: unknown syntax node %T", node))
}

func (s *Shell) expandArgs(cmd *syntax.Command) []string {
	args := make([]string, len(cmd.Args))
	for i, w := range cmd.Args {
		args[i] = w.Expand(s.lookup)
	}
	return args
}

func (s *Shell) execCommand(ctx context.Context, cmd *syntax.Command) int {
	args := s.expandArgs(cmd)

	if len(args) == 0 {
		// Redirections alone still create and truncate their files.
		_, closeFiles, err := s.redirect(s.baseStdio(), cmd.Redirects)
		if err != nil {
			s.reportError(err)
			return 1
		}
		closeFiles()
		return 0
	}

	if builtin, ok := AllBuiltins[args[0]]; ok {
		return s.runBuiltin(builtin, args, cmd.Redirects)
	}

	return s.runForeground(ctx, cmd)
}

// runBuiltin runs a builtin in this process with its redirections in effect
// only for the duration of the call.
func (s *Shell) runBuiltin(builtin ShellBuiltin, args []string, redirects []syntax.Redirect) int {
	files, closeFiles, err := s.redirect(s.baseStdio(), redirects)
	if err != nil {
		s.reportError(err)
		return 1
	}
	defer closeFiles()

	saved := s.stdio
	s.stdio = files.vio()
	defer func() { s.stdio = saved }()

	s.Log.Debug("builtin", "args", args)
	return builtin.Main(s, args)
}

// runForeground starts one unit, a program or a re-executed subtree, and
// waits for it. Under job control the unit gets its own process group and
// the terminal.
func (s *Shell) runForeground(ctx context.Context, node syntax.Node) int {
	p, status := s.prepare(node, s.baseStdio())
	if p == nil {
		return status
	}
	defer p.close()

	if s.Terminal == nil {
		pid, err := s.spawn(p, inheritGroup, false)
		if err != nil {
			return s.spawnFailed(p, err)
		}
		return s.Controller.WaitPids(pid)
	}

	pid, err := s.spawn(p, newGroup, true)
	if err != nil {
		// The child may have taken the terminal before its exec failed.
		s.reclaimTerminal()
		return s.spawnFailed(p, err)
	}
	p.close()

	job := s.Jobs.Register(pid, syntax.Print(node), jobs.Running, false)
	job.LastPid = pid
	s.recordJob(job)
	return s.finishForeground(job)
}

// reclaimTerminal takes the terminal back after a foreground unit that
// never became a job.
func (s *Shell) reclaimTerminal() {
	if err := s.Terminal.Reclaim(); err != nil {
		s.Log.Error("couldn't reclaim terminal", "err", err)
	}
}

func (s *Shell) finishForeground(job *jobs.Job) int {
	status := s.Controller.FinishForeground(job)
	s.recordJob(job)
	return status
}

// execPipeline starts every stage before waiting on any of them. All stages
// share the first started stage's process group and the status is the last
// stage's.
func (s *Shell) execPipeline(ctx context.Context, pipe *syntax.Pipe) int {
	stages, merged := syntax.Stages(pipe)
	base := s.baseStdio()

	var pipeFiles []*os.File
	closePipes := func() {
		for _, f := range pipeFiles {
			f.Close()
		}
		pipeFiles = nil
	}
	defer closePipes()

	group := newGroup
	if s.Terminal == nil {
		group = inheritGroup
	}

	var (
		pids        []int
		lastPid     = -1
		lastStatus  = 1
		lastStarted bool
		granted     bool
		in          afero.File = base[0]
	)

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			break
		}

		files := stdio{in, base[1], base[2]}
		var next afero.File
		if i < len(stages)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				s.reportError(fmt.Errorf("pipe: %w", err))
				break
			}
			pipeFiles = append(pipeFiles, r, w)
			files[1] = w
			if merged[i] {
				files[2] = w
			}
			next = r
		}
		in = next

		p, status := s.prepare(stage, files)
		if p == nil {
			lastStatus = status
			continue
		}

		foreground := s.Terminal != nil && group == newGroup
		granted = granted || foreground
		pid, err := s.spawn(p, group, foreground)
		p.close()
		if err != nil {
			lastStatus = s.spawnFailed(p, err)
			continue
		}

		if group == newGroup {
			group = pid
		}
		pids = append(pids, pid)
		if i == len(stages)-1 {
			lastPid = pid
			lastStarted = true
		}
	}
	closePipes()

	if len(pids) == 0 {
		if granted {
			s.reclaimTerminal()
		}
		return lastStatus
	}

	if s.Terminal == nil {
		status := s.Controller.WaitPids(pids...)
		if !lastStarted {
			return lastStatus
		}
		return status
	}

	job := s.Jobs.Register(group, syntax.Print(pipe), jobs.Running, false)
	job.LastPid = lastPid
	s.recordJob(job)
	status := s.finishForeground(job)
	if !lastStarted && job.State != jobs.Stopped {
		return lastStatus
	}
	return status
}

// execBackground starts the child in a new process group that never gets
// the terminal, registers it as a job and returns without waiting.
func (s *Shell) execBackground(ctx context.Context, bg *syntax.Background) int {
	files := s.baseStdio()
	if s.Terminal == nil {
		devNull, err := s.Fs.Open(os.DevNull)
		if err != nil {
			s.reportError(err)
			return 1
		}
		defer devNull.Close()
		files[0] = devNull
	}

	p, status := s.prepare(bg.Child, files)
	if p == nil {
		return status
	}
	defer p.close()

	pid, err := s.spawn(p, newGroup, false)
	if err != nil {
		return s.spawnFailed(p, err)
	}

	job := s.Jobs.Register(pid, syntax.Print(bg), jobs.Running, true)
	job.LastPid = pid
	s.LastBackground = pid
	s.recordJob(job)

	if s.Interactive {
		fmt.Fprintf(s.Stdout, "[%d] %d\n", job.ID, pid)
	}
	return 0
}
