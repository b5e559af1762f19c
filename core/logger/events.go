package logger

// LogType is one of the event payloads a LogEntry can carry.
type LogType interface {
	isLogType()
}

// LogEntry is one line of the event log. Exactly one payload field is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	CommandLine    *CommandLine    `json:"command_line,omitempty"`
	SyntaxError    *SyntaxError    `json:"syntax_error,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	JobChange      *JobChange      `json:"job_change,omitempty"`
	ExitStatus     *ExitStatus     `json:"exit_status,omitempty"`
}

// GetLogType returns the payload of the entry or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.CommandLine != nil:
		return le.CommandLine
	case le.SyntaxError != nil:
		return le.SyntaxError
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.JobChange != nil:
		return le.JobChange
	case le.ExitStatus != nil:
		return le.ExitStatus
	}
	return nil
}

func (le *LogEntry) setLogType(event LogType) {
	switch event := event.(type) {
	case *CommandLine:
		le.CommandLine = event
	case *SyntaxError:
		le.SyntaxError = event
	case *UnknownCommand:
		le.UnknownCommand = event
	case *JobChange:
		le.JobChange = event
	case *ExitStatus:
		le.ExitStatus = event
	}
}

// CommandLine is recorded for every line the shell executes.
type CommandLine struct {
	Line string `json:"line"`
}

// SyntaxError is recorded when a line fails to parse.
type SyntaxError struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

// UnknownCommand is recorded when a command isn't a builtin and can't be
// found on the PATH.
type UnknownCommand struct {
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// JobChange is recorded when a job is created or changes state.
type JobChange struct {
	ID      int    `json:"id"`
	Pgid    int    `json:"pgid"`
	Command string `json:"command"`
	State   string `json:"state"`
}

// ExitStatus is recorded after each line with the resulting $?.
type ExitStatus struct {
	Line   string `json:"line"`
	Status int    `json:"status"`
}

func (*CommandLine) isLogType()    {}
func (*SyntaxError) isLogType()    {}
func (*UnknownCommand) isLogType() {}
func (*JobChange) isLogType()      {}
func (*ExitStatus) isLogType()     {}
