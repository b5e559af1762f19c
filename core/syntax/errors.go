package syntax

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedQuote is returned when a quote is opened and never closed.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrDanglingEscape is returned when the input ends with a lone backslash.
	ErrDanglingEscape = errors.New("dangling escape at end of input")
	// ErrUnexpectedToken is returned when a token can't start or continue a
	// construct.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrUnexpectedEOF is returned when the input ends mid-construct.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrMissingRedirectTarget is returned when a redirection operator isn't
	// followed by a filename.
	ErrMissingRedirectTarget = errors.New("missing redirection target")
	// ErrUnmatchedParen is returned for a '(' without a matching ')'.
	ErrUnmatchedParen = errors.New("unmatched parenthesis")
	// ErrUnmatchedBrace is returned for a '{' without a matching '}'.
	ErrUnmatchedBrace = errors.New("unmatched brace")
)

// SyntaxError describes why and where a line failed to tokenize or parse.
type SyntaxError struct {
	// Pos is the rune offset in the line.
	Pos int
	// Near is the offending token text, empty at end of input.
	Near string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("syntax error: %v", e.Err)
	}
	return fmt.Sprintf("syntax error near %q: %v", e.Near, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
