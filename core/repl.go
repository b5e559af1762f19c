package core

import (
	"context"
	"errors"
	"io"
	"os"
	"os/user"
	"regexp"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/jsh/commands"
	"github.com/josephlewis42/jsh/core/config"
	"golang.org/x/term"
)

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")

func (s *Shell) initReadline() error {
	if s.Readline != nil {
		return nil
	}

	limit := s.Config.HistoryLimit
	if limit == 0 {
		// readline treats 0 as its own default.
		limit = -1
	}

	fd := int(s.Stdin.Fd())
	var saved *term.State
	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(s.Stdin),
		Stdout:       s.Stdout,
		Stderr:       s.Stderr,
		HistoryFile:  s.Config.HistoryPath(),
		HistoryLimit: limit,
		FuncIsTerminal: func() bool {
			return s.Interactive && term.IsTerminal(fd)
		},
		FuncGetWidth: func() int {
			width, _, err := term.GetSize(int(s.Stdout.Fd()))
			if err != nil || width <= 0 {
				return 80
			}
			return width
		},
		FuncMakeRaw: func() error {
			if !s.Interactive || !term.IsTerminal(fd) {
				return nil
			}
			state, err := term.MakeRaw(fd)
			if err != nil {
				return err
			}
			saved = state
			return nil
		},
		FuncExitRaw: func() error {
			if saved == nil {
				return nil
			}
			state := saved
			saved = nil
			return term.Restore(fd, state)
		},
	}

	if err := cfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	s.Readline = rl
	return nil
}

// RunInteractive reads lines until end of input or exit and runs each one.
// It returns the status the shell should exit with.
func (s *Shell) RunInteractive(ctx context.Context) int {
	if err := s.initReadline(); err != nil {
		s.reportError(err)
		return 1
	}

	for !s.exited {
		s.Controller.ReapFinished()

		line, err := s.readLine()
		switch {
		case errors.Is(err, io.EOF):
			return s.LastStatus

		case errors.Is(err, readline.ErrInterrupt):
			// Interrupt clears line.
			continue

		case err != nil:
			s.Log.Error("readline", "err", err)
			return 1

		case strings.TrimSpace(line) == "":
			continue
		}

		s.history = append(s.history, line)
		s.RunCommand(ctx, line)
	}

	return s.exitCode
}

// readLine reads one logical line, joining physical lines that end in an
// unescaped backslash with a space.
func (s *Shell) readLine() (string, error) {
	s.Readline.SetPrompt(s.prompt())

	var parts []string
	for {
		line, err := s.Readline.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) && len(parts) > 0 {
				return strings.Join(parts, " "), nil
			}
			return "", err
		}

		trimmed, more := continues(line)
		parts = append(parts, trimmed)
		if !more {
			return strings.Join(parts, " "), nil
		}
		s.Readline.SetPrompt(s.continuationPrompt())
	}
}

// continues reports whether line ends in an odd number of backslashes and
// returns it without the final one.
func continues(line string) (string, bool) {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	if n%2 == 1 {
		return line[:len(line)-1], true
	}
	return line, false
}

func (s *Shell) continuationPrompt() string {
	if !s.Interactive {
		return ""
	}
	return ContinuationPrompt
}

// prompt expands the configured template: \u user, \h host, \w working
// directory with $HOME as ~ and \$ which is # for root.
func (s *Shell) prompt() string {
	if !s.Interactive {
		return ""
	}

	prompt := s.Config.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	prompt = strings.ReplaceAll(prompt, `\u`, s.username())
	prompt = strings.ReplaceAll(prompt, `\h`, s.hostname())

	pwd := s.Env.Getenv(EnvPWD)
	if home := s.Env.Getenv(EnvHome); home != "" && (pwd == home || strings.HasPrefix(pwd, home+"/")) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	prompt = commands.Unescape(prompt)
	if !s.promptColor() {
		prompt = ansiEscape.ReplaceAllString(prompt, "")
	}
	return prompt
}

func (s *Shell) promptColor() bool {
	switch s.Config.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return commands.IsTerminal(s.Stdout)
	}
}

func (s *Shell) username() string {
	if name := s.Env.Getenv(EnvUser); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "?"
}

func (s *Shell) hostname() string {
	if host := s.Env.Getenv(EnvHostname); host != "" {
		return host
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "localhost"
}
