// Package jobs tracks process groups launched by the shell and moves them
// between the foreground and background.
package jobs

import (
	"errors"
	"fmt"
)

// ErrNoSuchJob is returned when a job id or process group isn't in the table.
var ErrNoSuchJob = errors.New("no such job")

// State is the lifecycle state of a job.
type State int

const (
	Running State = iota
	Stopped
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Done:
		return "Done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Job is the bookkeeping record for one process group.
type Job struct {
	ID         int
	Pgid       int
	Command    string
	State      State
	Background bool

	// LastPid is the process whose exit status is the job's status, the last
	// stage of a pipeline. Zero means any member.
	LastPid int
	// ExitStatus is the status of LastPid once it has terminated.
	ExitStatus int
}

func (j *Job) String() string {
	return fmt.Sprintf("[%d] %d %s %s", j.ID, j.Pgid, j.State, j.Command)
}

// Table holds the live jobs in creation order. It is only used from the
// shell's main goroutine and does no locking.
type Table struct {
	jobs []*Job
}

// NewTable creates an empty job table.
func NewTable() *Table {
	return &Table{}
}

// Register adds a job for the process group and returns it. The id is one
// more than the largest live id, so ids start over once the table drains.
func (t *Table) Register(pgid int, command string, state State, background bool) *Job {
	id := 1
	for _, j := range t.jobs {
		if j.ID >= id {
			id = j.ID + 1
		}
	}

	job := &Job{
		ID:         id,
		Pgid:       pgid,
		Command:    command,
		State:      state,
		Background: background,
	}
	t.jobs = append(t.jobs, job)
	return job
}

// FindByGroup returns the job for a process group or nil.
func (t *Table) FindByGroup(pgid int) *Job {
	for _, j := range t.jobs {
		if j.Pgid == pgid {
			return j
		}
	}
	return nil
}

// FindByID returns the job with the given id or nil.
func (t *Table) FindByID(id int) *Job {
	for _, j := range t.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// Remove unlinks the job for a process group, reporting whether it existed.
func (t *Table) Remove(pgid int) bool {
	for i, j := range t.jobs {
		if j.Pgid == pgid {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a snapshot of the jobs in creation order.
func (t *Table) List() []*Job {
	out := make([]*Job, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Latest returns the most recently created job or nil.
func (t *Table) Latest() *Job {
	if len(t.jobs) == 0 {
		return nil
	}
	return t.jobs[len(t.jobs)-1]
}

// Len returns the number of live jobs.
func (t *Table) Len() int {
	return len(t.jobs)
}
