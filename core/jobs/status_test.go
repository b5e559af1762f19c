package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestParseSignal(t *testing.T) {
	cases := map[string]unix.Signal{
		"9":       unix.SIGKILL,
		"15":      unix.SIGTERM,
		"KILL":    unix.SIGKILL,
		"SIGKILL": unix.SIGKILL,
		"sigterm": unix.SIGTERM,
		"cont":    unix.SIGCONT,
		"TSTP":    unix.SIGTSTP,
	}

	for spec, want := range cases {
		t.Run(spec, func(t *testing.T) {
			got, err := ParseSignal(spec)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSignalInvalid(t *testing.T) {
	for _, spec := range []string{"", "0", "-3", "NOPE", "SIG", "9x"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseSignal(spec)
			assert.Error(t, err)
		})
	}
}

func TestSignalNames(t *testing.T) {
	names := SignalNames()

	assert.Contains(t, names, "9) SIGKILL")
	assert.Contains(t, names, "15) SIGTERM")
	assert.Equal(t, "1) SIGHUP", names[0])
}
