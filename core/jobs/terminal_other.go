//go:build !linux

package jobs

import "golang.org/x/sys/unix"

func (t *Terminal) waitForeground() error {
	return ErrJobControlUnsupported
}

func (t *Terminal) acquire() error {
	return ErrJobControlUnsupported
}

func (t *Terminal) setForeground(pgid int, modes *unix.Termios) error {
	return ErrJobControlUnsupported
}
