package jobs

import (
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// ErrJobControlUnsupported is returned by Acquire on platforms without
// terminal job control support.
var ErrJobControlUnsupported = errors.New("job control is not supported on this platform")

// interactiveSignals are caught, not ignored, while the shell owns the
// terminal. Caught signals revert to their default action across exec, so
// children start with default dispositions without any work in the child.
var interactiveSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTSTP,
	unix.SIGTTIN,
	unix.SIGTTOU,
}

// Terminal manages the foreground process group of the controlling terminal.
// A nil *Terminal is valid and does nothing, it's used when job control is off.
type Terminal struct {
	fd        int
	shellPgid int
	modes     *unix.Termios
	signals   chan os.Signal
	log       *log.Logger
}

// NewTerminal creates a Terminal for the controlling terminal open as tty.
func NewTerminal(tty *os.File, logger *log.Logger) *Terminal {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Terminal{fd: int(tty.Fd()), log: logger}
}

// Fd returns the terminal's file descriptor, or -1 for a nil Terminal.
func (t *Terminal) Fd() int {
	if t == nil {
		return -1
	}
	return t.fd
}

// Acquire waits until the shell is in the foreground, catches the interactive
// signals, puts the shell in its own process group and takes the terminal.
func (t *Terminal) Acquire() error {
	if t == nil {
		return nil
	}
	if err := t.waitForeground(); err != nil {
		return err
	}

	t.signals = make(chan os.Signal, 16)
	signal.Notify(t.signals, interactiveSignals...)
	go func(c chan os.Signal) {
		for sig := range c {
			t.log.Debug("ignored signal", "signal", sig)
		}
	}(t.signals)

	if err := t.acquire(); err != nil {
		t.Release()
		return err
	}

	t.log.Debug("acquired terminal", "fd", t.fd, "pgid", t.shellPgid)
	return nil
}

// Give hands the terminal to the process group.
func (t *Terminal) Give(pgid int) error {
	if t == nil {
		return nil
	}
	t.log.Debug("terminal handoff", "pgid", pgid)
	return t.setForeground(pgid, nil)
}

// Reclaim returns the terminal to the shell and restores the terminal modes
// saved by Acquire.
func (t *Terminal) Reclaim() error {
	if t == nil {
		return nil
	}
	t.log.Debug("terminal reclaim", "pgid", t.shellPgid)
	return t.setForeground(t.shellPgid, t.modes)
}

// Release stops catching the interactive signals.
func (t *Terminal) Release() {
	if t == nil || t.signals == nil {
		return
	}
	signal.Stop(t.signals)
	close(t.signals)
	t.signals = nil
}
