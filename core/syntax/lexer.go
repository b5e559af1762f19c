package syntax

import (
	"strings"
)

type lexer struct {
	src    []rune
	pos    int
	tokens []Token
}

// Tokenize splits a line into tokens. The returned slice always ends with a
// TokenEOF. Errors are *SyntaxError wrapping ErrUnterminatedQuote or
// ErrDanglingEscape.
func Tokenize(line string) ([]Token, error) {
	l := &lexer{src: []rune(line)}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for {
		for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
			l.pos++
		}

		if l.pos >= len(l.src) || l.src[l.pos] == '#' {
			l.emit(Token{Kind: TokenEOF, Pos: l.pos})
			return nil
		}

		if l.operator() {
			continue
		}

		if err := l.word(); err != nil {
			return err
		}
	}
}

func (l *lexer) emit(t Token) {
	l.tokens = append(l.tokens, t)
}

func (l *lexer) hasPrefix(s string) bool {
	rest := l.src[l.pos:]
	if len(rest) < len(s) {
		return false
	}
	return string(rest[:len(s)]) == s
}

func (l *lexer) operator() bool {
	for _, op := range operators {
		if l.hasPrefix(op.text) {
			l.emit(Token{Kind: op.kind, Text: op.text, Pos: l.pos})
			l.pos += len(op.text)
			return true
		}
	}
	return false
}

func (l *lexer) word() error {
	start := l.pos
	w := &Word{}
	var bare strings.Builder

	flushBare := func() {
		if bare.Len() > 0 {
			w.add(Bare, bare.String())
			bare.Reset()
		}
	}

Scan:
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case isSpace(r) || isOperatorStart(r):
			break Scan

		case r == '\\':
			if l.pos+1 >= len(l.src) {
				return &SyntaxError{Pos: l.pos, Near: `\`, Err: ErrDanglingEscape}
			}
			flushBare()
			w.add(Escaped, string(l.src[l.pos+1]))
			l.pos += 2

		case r == '\'' || r == '"':
			flushBare()
			if err := l.quoted(w, r); err != nil {
				return err
			}

		default:
			bare.WriteRune(r)
			l.pos++
		}
	}
	flushBare()

	kind := TokenWord
	if w.Quoted() {
		kind = TokenQuotedWord
	}
	l.emit(Token{Kind: kind, Text: w.Literal(), Word: w, Pos: start})
	return nil
}

// quoted consumes a quoted section starting at the opening quote and appends
// it to w. Backslashes escape the following character in both quote styles.
func (l *lexer) quoted(w *Word, quote rune) error {
	start := l.pos
	kind := SingleQuoted
	if quote == '"' {
		kind = DoubleQuoted
	}
	l.pos++

	var text strings.Builder
	emitted := false
	flush := func(force bool) {
		if text.Len() > 0 || (force && !emitted) {
			w.Parts = append(w.Parts, WordPart{Quote: kind, Text: text.String()})
			text.Reset()
			emitted = true
		}
	}

	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case r == quote:
			flush(true)
			l.pos++
			return nil
		case r == '\\' && l.pos+1 < len(l.src):
			flush(false)
			w.Parts = append(w.Parts, WordPart{Quote: Escaped, Text: string(l.src[l.pos+1])})
			emitted = true
			l.pos += 2
		default:
			text.WriteRune(r)
			l.pos++
		}
	}

	return &SyntaxError{Pos: start, Near: string(quote), Err: ErrUnterminatedQuote}
}
