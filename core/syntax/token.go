package syntax

import "fmt"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWord
	TokenQuotedWord
	TokenPipe           // |
	TokenPipeBoth       // |&
	TokenRedirIn        // <
	TokenRedirOut       // >
	TokenRedirAppend    // >>
	TokenRedirErrOut    // &>
	TokenRedirErrAppend // &>>
	TokenAmpersand      // &
	TokenSemicolon      // ;
	TokenAnd            // &&
	TokenOr             // ||
	TokenLParen         // (
	TokenRParen         // )
)

var tokenNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenWord:           "WORD",
	TokenQuotedWord:     "QUOTED_WORD",
	TokenPipe:           "|",
	TokenPipeBoth:       "|&",
	TokenRedirIn:        "<",
	TokenRedirOut:       ">",
	TokenRedirAppend:    ">>",
	TokenRedirErrOut:    "&>",
	TokenRedirErrAppend: "&>>",
	TokenAmpersand:      "&",
	TokenSemicolon:      ";",
	TokenAnd:            "&&",
	TokenOr:             "||",
	TokenLParen:         "(",
	TokenRParen:         ")",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsRedirect reports whether the kind is one of the redirection operators.
func (k TokenKind) IsRedirect() bool {
	switch k {
	case TokenRedirIn, TokenRedirOut, TokenRedirAppend, TokenRedirErrOut, TokenRedirErrAppend:
		return true
	}
	return false
}

// IsWord reports whether the kind carries a Word.
func (k TokenKind) IsWord() bool {
	return k == TokenWord || k == TokenQuotedWord
}

// Token is a single lexical unit of an input line.
type Token struct {
	Kind TokenKind
	// Text holds the decoded text of a word or the operator spelling.
	Text string
	// Word holds the quoting structure of WORD and QUOTED_WORD tokens.
	Word *Word
	// Pos is the rune offset of the token in the input line.
	Pos int
}

func (t Token) String() string {
	if t.Kind.IsWord() {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
	return t.Kind.String()
}

// operators in the order they must be matched, longest spelling first within
// each shared prefix.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"&>>", TokenRedirErrAppend},
	{"|&", TokenPipeBoth},
	{"||", TokenOr},
	{"&&", TokenAnd},
	{">>", TokenRedirAppend},
	{"&>", TokenRedirErrOut},
	{"|", TokenPipe},
	{"&", TokenAmpersand},
	{"<", TokenRedirIn},
	{">", TokenRedirOut},
	{";", TokenSemicolon},
	{"(", TokenLParen},
	{")", TokenRParen},
}

func isOperatorStart(r rune) bool {
	switch r {
	case '|', '&', '<', '>', ';', '(', ')':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
