package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	CommandLine    CommandLineReport    `json:"command_line_report"`
	SyntaxError    SyntaxErrorReport    `json:"syntax_error_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	JobChange      JobChangeReport      `json:"job_change_report"`
	ExitStatus     ExitStatusReport     `json:"exit_status_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch event := le.GetLogType().(type) {
	case *CommandLine:
		r.CommandLine.update(event)
	case *SyntaxError:
		r.SyntaxError.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *JobChange:
		r.JobChange.update(event)
	case *ExitStatus:
		r.ExitStatus.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type CommandLineReport struct {
	Count int        `json:"count"`
	Lines StrCounter `json:"lines"`
}

func (r *CommandLineReport) update(cl *CommandLine) {
	r.Count++
	r.Lines.Increment(cl.Line)
}

type SyntaxErrorReport struct {
	Errors StrCounter `json:"errors"`
}

func (r *SyntaxErrorReport) update(se *SyntaxError) {
	r.Errors.Increment(se.Error)
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Command) > 0 {
		r.CommandNames.Increment(uc.Command[0])
	}
}

type JobChangeReport struct {
	States StrCounter `json:"states"`
}

func (r *JobChangeReport) update(jc *JobChange) {
	r.States.Increment(jc.State)
}

type ExitStatusReport struct {
	Statuses StrCounter `json:"statuses"`
}

func (r *ExitStatusReport) update(es *ExitStatus) {
	r.Statuses.Increment(strconv.Itoa(es.Status))
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Keys returns the distinct keys, most frequent first.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := s.internal[out[i]], s.internal[out[j]]
		if ci == cj {
			return out[i] < out[j]
		}
		return ci > cj
	})
	return out
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
