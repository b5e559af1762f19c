package syntax

import (
	"strings"
)

// Quote records how a run of characters inside a word was written.
type Quote int

const (
	// Bare text is subject to parameter expansion.
	Bare Quote = iota
	// Escaped text was preceded by a backslash and is always literal.
	Escaped
	// SingleQuoted text is literal.
	SingleQuoted
	// DoubleQuoted text is subject to parameter expansion.
	DoubleQuoted
)

// WordPart is a run of characters sharing one quoting style.
type WordPart struct {
	Quote Quote
	Text  string
}

// Word is a shell word made of differently quoted parts, e.g. a"b c"'$d'.
type Word struct {
	Parts []WordPart
}

// NewWord creates an unquoted word.
func NewWord(text string) *Word {
	return &Word{Parts: []WordPart{{Quote: Bare, Text: text}}}
}

func (w *Word) add(q Quote, text string) {
	if n := len(w.Parts); n > 0 && w.Parts[n-1].Quote == q && q != Escaped {
		w.Parts[n-1].Text += text
		return
	}
	w.Parts = append(w.Parts, WordPart{Quote: q, Text: text})
}

// Quoted reports whether any part of the word was quoted or escaped.
func (w *Word) Quoted() bool {
	for _, p := range w.Parts {
		if p.Quote != Bare {
			return true
		}
	}
	return false
}

// Literal returns the decoded text of the word without expanding parameters.
func (w *Word) Literal() string {
	var sb strings.Builder
	for _, p := range w.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// IsBare reports whether the word is exactly the unquoted text s.
func (w *Word) IsBare(s string) bool {
	return len(w.Parts) == 1 && w.Parts[0].Quote == Bare && w.Parts[0].Text == s
}

// Expand substitutes $NAME, ${NAME} and the special parameters $?, $$ and $!
// in the bare and double quoted parts of the word. lookup receives the
// parameter name ("?", "$", "!" or NAME) and returns its value.
func (w *Word) Expand(lookup func(name string) string) string {
	var sb strings.Builder
	for _, p := range w.Parts {
		switch p.Quote {
		case Bare, DoubleQuoted:
			expandInto(&sb, p.Text, lookup)
		default:
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func expandInto(sb *strings.Builder, s string, lookup func(string) string) {
	for i := 0; i < len(s); i++ {
		if s[i] != '$' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}

		next := s[i+1]
		switch {
		case next == '?' || next == '$' || next == '!':
			sb.WriteString(lookup(string(next)))
			i++
		case next == '{':
			end := strings.IndexByte(s[i+2:], '}')
			name := ""
			if end >= 0 {
				name = s[i+2 : i+2+end]
			}
			if end < 0 || !isName(name) {
				sb.WriteByte('$')
				continue
			}
			sb.WriteString(lookup(name))
			i += 2 + end
		case isNameStart(next):
			j := i + 1
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			sb.WriteString(lookup(s[i+1 : j]))
			i = j - 1
		default:
			sb.WriteByte('$')
		}
	}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func isName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

// IsName reports whether s is a valid environment variable name.
func IsName(s string) bool {
	return isName(s)
}
