//go:build linux

package jobs

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// waitForeground stops the shell with SIGTTIN until it's started in the
// foreground, the way a job-control shell launched in the background waits
// to be brought forward.
func (t *Terminal) waitForeground() error {
	for {
		fg, err := unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
		if err != nil {
			return fmt.Errorf("tcgetpgrp: %w", err)
		}
		pgrp := unix.Getpgrp()
		if fg == pgrp {
			return nil
		}
		if err := unix.Kill(-pgrp, unix.SIGTTIN); err != nil {
			return fmt.Errorf("kill SIGTTIN: %w", err)
		}
	}
}

func (t *Terminal) acquire() error {
	pid := os.Getpid()
	// A session leader can't change its group and already leads one.
	if err := unix.Setpgid(pid, pid); err != nil && !errors.Is(err, unix.EPERM) {
		return fmt.Errorf("setpgid: %w", err)
	}
	t.shellPgid = unix.Getpgrp()

	modes, err := unix.IoctlGetTermios(t.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("tcgetattr: %w", err)
	}
	t.modes = modes

	return t.setForeground(t.shellPgid, nil)
}

// setForeground calls tcsetpgrp with SIGTTOU blocked so a shell that is
// currently in the background can take the terminal back without being
// stopped. modes are restored afterwards when non-nil.
func (t *Terminal) setForeground(pgid int, modes *unix.Termios) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var set, old unix.Sigset_t
	sigaddset(&set, unix.SIGTTOU)
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, &old); err != nil {
		return fmt.Errorf("sigprocmask: %w", err)
	}
	defer unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)

	if err := unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid); err != nil {
		return fmt.Errorf("tcsetpgrp(%d): %w", pgid, err)
	}

	if modes != nil {
		if err := unix.IoctlSetTermios(t.fd, unix.TCSETSW, modes); err != nil {
			return fmt.Errorf("tcsetattr: %w", err)
		}
	}
	return nil
}

func sigaddset(set *unix.Sigset_t, sig unix.Signal) {
	n := uint(sig - 1)
	bits := uint(unsafe.Sizeof(set.Val[0]) * 8)
	set.Val[n/bits] |= 1 << (n % bits)
}
