package jobs

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ExitStatus converts a wait status to the shell's status convention: the
// exit code for a normal exit, 128+signal for a signal death or a stop.
func ExitStatus(ws unix.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	case ws.Stopped():
		return 128 + int(ws.StopSignal())
	}
	return 1
}

// ParseSignal accepts a signal number ("9") or name with or without the SIG
// prefix ("KILL", "sigkill").
func ParseSignal(spec string) (unix.Signal, error) {
	if n, err := strconv.Atoi(spec); err == nil {
		sig := unix.Signal(n)
		if n <= 0 || unix.SignalName(sig) == "" {
			return 0, fmt.Errorf("invalid signal number: %s", spec)
		}
		return sig, nil
	}

	name := strings.ToUpper(spec)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("invalid signal specification: %s", spec)
}

// SignalNames lists "N) NAME" for every signal the platform knows.
func SignalNames() []string {
	var out []string
	for i := 1; i < 65; i++ {
		if name := unix.SignalName(unix.Signal(i)); name != "" {
			out = append(out, fmt.Sprintf("%d) %s", i, name))
		}
	}
	return out
}
