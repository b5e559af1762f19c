package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/jsh/core/jobs"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBuiltins(t *testing.T) {
	assert.Equal(t, []string{
		"bg", "cd", "echo", "exit", "fg", "help", "history",
		"jobs", "kill", "pwd", "set", "unset",
	}, ListBuiltins())

	for name, builtin := range AllBuiltins {
		assert.NotNil(t, builtin, name)
		assert.NotEmpty(t, builtinUsage[name], name)
	}
}

func TestBuiltinGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]string{
		"help":         "help",
		"echo-escapes": `echo -e 'a\tb'`,
		"set-unset":    "set JSH_A=1 JSH_B=2; echo $JSH_A$JSH_B; unset JSH_A; echo [$JSH_A] $JSH_B",
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)

			status := ts.run(line)
			stdout, stderr := ts.output()

			assert.Equal(t, 0, status, stderr)
			g.Assert(t, name, []byte(stdout))
		})
	}
}

func TestCd(t *testing.T) {
	ts := newTestShell(t)
	dir, err := filepath.EvalSymlinks(ts.dir)
	require.NoError(t, err)
	start, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, 0, ts.run(fmt.Sprintf("cd '%s'", dir)))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, dir, wd)
	assert.Equal(t, dir, ts.Env.Getenv(EnvPWD))
	assert.Equal(t, start, ts.Env.Getenv(EnvOldPWD))

	assert.Equal(t, 0, ts.run("cd -"))
	wd, err = os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, start, wd)

	stdout, _ := ts.output()
	assert.Equal(t, start+"\n", stdout)
}

func TestCdHome(t *testing.T) {
	ts := newTestShell(t)
	dir, err := filepath.EvalSymlinks(ts.dir)
	require.NoError(t, err)
	require.NoError(t, ts.Env.Setenv(EnvHome, dir))

	assert.Equal(t, 0, ts.run("cd"))
	assert.Equal(t, dir, ts.Env.Getenv(EnvPWD))
}

func TestCdErrors(t *testing.T) {
	cases := map[string]struct {
		line      string
		setup     func(ts *testShell)
		wantError string
	}{
		"missing": {
			line:      "cd /nonexistent-jsh",
			wantError: "cd: /nonexistent-jsh: no such file or directory\n",
		},
		"not a directory": {
			line:      "cd /dev/null",
			wantError: "cd: /dev/null: not a directory\n",
		},
		"too many": {
			line:      "cd / /",
			wantError: "cd: too many arguments\n",
		},
		"no home": {
			line:      "cd",
			setup:     func(ts *testShell) { _ = ts.Env.Unsetenv(EnvHome) },
			wantError: "cd: HOME not set\n",
		},
		"no oldpwd": {
			line:      "cd -",
			setup:     func(ts *testShell) { _ = ts.Env.Unsetenv(EnvOldPWD) },
			wantError: "cd: OLDPWD not set\n",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)
			if tc.setup != nil {
				tc.setup(ts)
			}

			status := ts.run(tc.line)
			_, stderr := ts.output()

			assert.Equal(t, 1, status)
			assert.Equal(t, tc.wantError, stderr)
		})
	}
}

func TestExit(t *testing.T) {
	cases := map[string]struct {
		line       string
		before     string
		wantCode   int
		wantExited bool
	}{
		"explicit code": {line: "exit 4", wantCode: 4, wantExited: true},
		"last status":   {before: "false", line: "exit", wantCode: 1, wantExited: true},
		"wraps":         {line: "exit 257", wantCode: 1, wantExited: true},
		"not numeric":   {line: "exit abc", wantCode: 2, wantExited: true},
		"too many":      {line: "exit 1 2", wantCode: 1},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)
			if tc.before != "" {
				ts.run(tc.before)
			}

			status := ts.run(tc.line)
			exited, _ := ts.Exited()

			assert.Equal(t, tc.wantCode, status)
			assert.Equal(t, tc.wantExited, exited)
		})
	}
}

func TestJobsListing(t *testing.T) {
	ts := newTestShell(t)

	ts.run("sleep 30 &")
	job := ts.Jobs.Latest()
	require.NotNil(t, job)

	assert.Equal(t, 0, ts.run("jobs --color=never"))
	stdout, _ := ts.output()
	assert.Equal(t, fmt.Sprintf("[1] %d Running sleep 30 &\n", job.Pgid), stdout)
}

func TestJobsColor(t *testing.T) {
	ts := newTestShell(t)

	ts.run("sleep 30 &")
	assert.Equal(t, 0, ts.run("jobs --color=always"))

	stdout, _ := ts.output()
	assert.Contains(t, stdout, "\x1b[32;1mRunning\x1b[0m")
}

func TestKill(t *testing.T) {
	ts := newTestShell(t)

	ts.run("sleep 30 &")
	job := ts.Jobs.Latest()
	require.NotNil(t, job)

	assert.Equal(t, 0, ts.run("kill -9 %1"))
	assert.Eventually(t, func() bool {
		ts.Controller.ReapFinished()
		return ts.Jobs.Len() == 0
	}, defaultWait, pollInterval)

	assert.Equal(t, 137, job.ExitStatus)
}

func TestKillSignalForms(t *testing.T) {
	for _, form := range []string{"kill %1", "kill -TERM %1", "kill -SIGTERM %1", "kill -s TERM %1", "kill -15 %1"} {
		t.Run(form, func(t *testing.T) {
			ts := newTestShell(t)

			ts.run("sleep 30 &")
			job := ts.Jobs.Latest()
			require.NotNil(t, job)

			assert.Equal(t, 0, ts.run(form))
			assert.Eventually(t, func() bool {
				ts.Controller.ReapFinished()
				return ts.Jobs.Len() == 0
			}, defaultWait, pollInterval)
			assert.Equal(t, 143, job.ExitStatus)
		})
	}
}

func TestKillErrors(t *testing.T) {
	cases := map[string]struct {
		line      string
		wantError string
	}{
		"empty table": {line: "kill -9 %1", wantError: "kill: job not found: %1\n"},
		"bad job":     {line: "kill %x", wantError: "kill: job not found: %x\n"},
		"no target":   {line: "kill -9", wantError: killUsage + "\n"},
		"bad pid":     {line: "kill abc", wantError: "kill: abc: bad pid\n"},
		"bad signal":  {line: "kill -NOPE 1", wantError: "kill: "},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)

			status := ts.run(tc.line)
			_, stderr := ts.output()

			assert.Equal(t, 1, status)
			assert.True(t, strings.HasPrefix(stderr, tc.wantError), stderr)
			assert.Equal(t, 0, ts.Jobs.Len())
		})
	}
}

func TestKillList(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, 0, ts.run("kill -l"))
	stdout, _ := ts.output()

	assert.Contains(t, strings.Split(stdout, "\n"), "9) SIGKILL")
}

func TestFgBgWithoutJobControl(t *testing.T) {
	for _, name := range []string{"fg", "bg"} {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)

			status := ts.run(name)
			_, stderr := ts.output()

			assert.Equal(t, 1, status)
			assert.Equal(t, name+": no job control\n", stderr)
		})
	}
}

func TestParseJobSpec(t *testing.T) {
	ts := newTestShell(t)

	_, err := ts.parseJobSpec([]string{"fg"})
	assert.EqualError(t, err, "no current job")

	first := ts.Jobs.Register(100, "sleep 1", jobs.Running, true)
	second := ts.Jobs.Register(200, "sleep 2", jobs.Running, true)

	got, err := ts.parseJobSpec([]string{"fg"})
	require.NoError(t, err)
	assert.Same(t, second, got)

	got, err = ts.parseJobSpec([]string{"fg", "%1"})
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = ts.parseJobSpec([]string{"fg", "2"})
	require.NoError(t, err)
	assert.Same(t, second, got)

	_, err = ts.parseJobSpec([]string{"fg", "%9"})
	assert.EqualError(t, err, "%9: no such job")

	_, err = ts.parseJobSpec([]string{"fg", "%x"})
	assert.EqualError(t, err, "%x: bad job id")

	// Keep cleanup from signalling made up groups.
	ts.Jobs.Remove(100)
	ts.Jobs.Remove(200)
}

func TestSetErrors(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run("set 1BAD=x")
	_, stderr := ts.output()

	assert.Equal(t, 1, status)
	assert.Equal(t, "set: usage: set VAR=value\n", stderr)
}

func TestSetPrints(t *testing.T) {
	ts := newTestShell(t)
	require.NoError(t, ts.Env.Setenv("JSH_PRINTED", "yes"))

	assert.Equal(t, 0, ts.run("set"))
	stdout, _ := ts.output()

	assert.Contains(t, strings.Split(stdout, "\n"), "JSH_PRINTED=yes")
}

func TestUnsetErrors(t *testing.T) {
	cases := map[string]struct {
		line       string
		wantStatus int
		wantError  string
	}{
		"no names":   {line: "unset", wantStatus: 1, wantError: "unset: usage: unset VAR\n"},
		"bad name":   {line: "unset 1BAD", wantStatus: 1, wantError: "unset: 1BAD: not a valid identifier\n"},
		"bad option": {line: "unset -z X", wantStatus: 2, wantError: "unset: "},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)

			status := ts.run(tc.line)
			_, stderr := ts.output()

			assert.Equal(t, tc.wantStatus, status)
			assert.True(t, strings.HasPrefix(stderr, tc.wantError), stderr)
		})
	}
}

func TestHistory(t *testing.T) {
	ts := newTestShell(t)
	ts.history = []string{"echo one", "echo two", "history"}

	assert.Equal(t, 0, ts.run("history"))
	assert.Equal(t, 0, ts.run("history 1"))
	assert.Equal(t, 0, ts.run("history -c"))
	assert.Empty(t, ts.history)

	stdout, _ := ts.output()
	assert.Equal(t, "    1  echo one\n    2  echo two\n    3  history\n    3  history\n", stdout)
}

func TestHistoryBadCount(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, 1, ts.run("history x"))
	_, stderr := ts.output()
	assert.Equal(t, "history: x: numeric argument required\n", stderr)
}
