package jobs

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// Controller waits on, reaps and resumes the jobs in a Table.
type Controller struct {
	Jobs *Table
	// Terminal is nil when job control is off.
	Terminal *Terminal
	// Out receives the job announcements.
	Out io.Writer
	// Quiet drops the Done announcements of reaped background jobs.
	Quiet bool
	Log *log.Logger
}

// NewController creates a controller over an empty table.
func NewController(term *Terminal, out io.Writer, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		Jobs:     NewTable(),
		Terminal: term,
		Out:      out,
		Log:      logger,
	}
}

// WaitForeground blocks until every process in the job's group has
// terminated or one of them stops. On a stop the job is marked Stopped and
// left in the table; the returned status is 128 plus the stop signal.
// Otherwise the job is marked Done and the status of LastPid is returned.
func (c *Controller) WaitForeground(job *Job) int {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-job.Pgid, &ws, unix.WUNTRACED, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			job.State = Done
			return job.ExitStatus
		case err != nil:
			c.Log.Error("wait failed", "pgid", job.Pgid, "err", err)
			job.State = Done
			return job.ExitStatus
		}

		c.Log.Debug("wait", "pgid", job.Pgid, "pid", pid, "status", ExitStatus(ws))
		switch {
		case ws.Stopped():
			job.State = Stopped
			return ExitStatus(ws)
		case ws.Exited() || ws.Signaled():
			if job.LastPid == 0 || pid == job.LastPid {
				job.ExitStatus = ExitStatus(ws)
			}
		}
	}
}

// WaitPids waits for specific children without job control and returns the
// status of the last one.
func (c *Controller) WaitPids(pids ...int) int {
	status := 0
	for _, pid := range pids {
		for {
			var ws unix.WaitStatus
			_, err := unix.Wait4(pid, &ws, 0, nil)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil {
				c.Log.Error("wait failed", "pid", pid, "err", err)
				status = 1
			} else {
				status = ExitStatus(ws)
			}
			break
		}
	}
	return status
}

// FinishForeground waits for a foreground job, returns the terminal to the
// shell and then either announces the stop or forgets the finished job.
func (c *Controller) FinishForeground(job *Job) int {
	status := c.WaitForeground(job)

	if err := c.Terminal.Reclaim(); err != nil {
		c.Log.Error("couldn't reclaim terminal", "err", err)
	}

	if job.State == Stopped {
		job.Background = true
		fmt.Fprintf(c.Out, "\n[%d]+ Stopped %s\n", job.ID, job.Command)
		return status
	}

	c.Jobs.Remove(job.Pgid)
	return status
}

// poll collects state changes of a job without blocking.
func (c *Controller) poll(job *Job) {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-job.Pgid, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.ECHILD):
			job.State = Done
			return
		case err != nil:
			c.Log.Error("poll failed", "pgid", job.Pgid, "err", err)
			return
		case pid == 0:
			return
		}

		switch {
		case ws.Stopped():
			job.State = Stopped
		case ws.Continued():
			job.State = Running
		case ws.Exited() || ws.Signaled():
			if job.LastPid == 0 || pid == job.LastPid {
				job.ExitStatus = ExitStatus(ws)
			}
		}
	}
}

// ReapFinished polls every job once, announces completions and stops, and
// removes the jobs that have finished. It never blocks.
func (c *Controller) ReapFinished() {
	for _, job := range c.Jobs.List() {
		before := job.State
		c.poll(job)

		switch {
		case job.State == Done:
			if job.Background && !c.Quiet {
				fmt.Fprintf(c.Out, "[%d] Done %s\n", job.ID, job.Command)
			}
			c.Log.Debug("job finished", "id", job.ID, "pgid", job.Pgid, "status", job.ExitStatus)
			c.Jobs.Remove(job.Pgid)
		case job.State == Stopped && before != Stopped:
			fmt.Fprintf(c.Out, "[%d]+ Stopped %s\n", job.ID, job.Command)
		}
	}
}

// BringToForeground gives the job the terminal, continues it if it was
// stopped and waits for it like a foreground command.
func (c *Controller) BringToForeground(id int) (int, error) {
	job := c.Jobs.FindByID(id)
	if job == nil {
		return 1, fmt.Errorf("%%%d: %w", id, ErrNoSuchJob)
	}

	fmt.Fprintln(c.Out, job.Command)
	job.Background = false

	if err := c.Terminal.Give(job.Pgid); err != nil {
		return 1, err
	}

	if job.State == Stopped {
		if err := unix.Kill(-job.Pgid, unix.SIGCONT); err != nil {
			if rerr := c.Terminal.Reclaim(); rerr != nil {
				c.Log.Error("couldn't reclaim terminal", "err", rerr)
			}
			return 1, fmt.Errorf("kill SIGCONT: %w", err)
		}
		job.State = Running
	}

	return c.FinishForeground(job), nil
}

// ContinueInBackground resumes a stopped job without giving it the terminal.
func (c *Controller) ContinueInBackground(id int) error {
	job := c.Jobs.FindByID(id)
	if job == nil {
		return fmt.Errorf("%%%d: %w", id, ErrNoSuchJob)
	}

	if job.State == Stopped {
		if err := unix.Kill(-job.Pgid, unix.SIGCONT); err != nil {
			return fmt.Errorf("kill SIGCONT: %w", err)
		}
	}
	job.State = Running
	job.Background = true
	fmt.Fprintf(c.Out, "[%d]+ %s &\n", job.ID, job.Command)
	return nil
}

// Signal sends sig to every process of the job.
func (c *Controller) Signal(id int, sig unix.Signal) error {
	job := c.Jobs.FindByID(id)
	if job == nil {
		return fmt.Errorf("%%%d: %w", id, ErrNoSuchJob)
	}
	if err := unix.Kill(-job.Pgid, sig); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	return nil
}
