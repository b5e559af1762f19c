package syntax

import (
	"fmt"
	"io"
	"strings"
)

const (
	precList = iota
	precLogical
	precPipe
	precFactor
)

// Print renders a tree back into source form. For trees produced by Parse the
// output parses to a tree of the same shape. Nodes that can't be written at
// their position (e.g. a Sequence on the right of &&) are wrapped in a
// subshell.
func Print(n Node) string {
	var sb strings.Builder
	printNode(&sb, n, precList)
	return sb.String()
}

func precedence(n Node) int {
	switch n.(type) {
	case *Sequence, *Background:
		return precList
	case *And, *Or:
		return precLogical
	case *Pipe:
		return precPipe
	default:
		return precFactor
	}
}

func printNode(sb *strings.Builder, n Node, min int) {
	if n == nil {
		return
	}
	if precedence(n) < min {
		sb.WriteString("(")
		printNode(sb, n, precList)
		sb.WriteString(")")
		return
	}

	switch n := n.(type) {
	case *Command:
		printCommand(sb, n)

	case *Pipe:
		printNode(sb, n.Left, precPipe)
		if n.StderrMerged {
			sb.WriteString(" |& ")
		} else {
			sb.WriteString(" | ")
		}
		printNode(sb, n.Right, precFactor)

	case *And:
		printNode(sb, n.Left, precLogical)
		sb.WriteString(" && ")
		printNode(sb, n.Right, precPipe)

	case *Or:
		printNode(sb, n.Left, precLogical)
		sb.WriteString(" || ")
		printNode(sb, n.Right, precPipe)

	case *Sequence:
		printNode(sb, n.Left, precList)
		if _, ok := lastStatement(n.Left).(*Background); ok {
			sb.WriteString(" ")
		} else {
			sb.WriteString("; ")
		}
		if bg, ok := n.Right.(*Background); ok {
			printNode(sb, bg, precList)
		} else {
			printNode(sb, n.Right, precLogical)
		}

	case *Background:
		printNode(sb, n.Child, precLogical)
		sb.WriteString(" &")

	case *Subshell:
		sb.WriteString("(")
		printNode(sb, n.Child, precList)
		sb.WriteString(")")

	case *Group:
		sb.WriteString("{ ")
		printNode(sb, n.Child, precList)
		if _, ok := lastStatement(n.Child).(*Background); ok {
			sb.WriteString(" }")
		} else {
			sb.WriteString("; }")
		}
	}
}

// lastStatement returns the right-most statement of a list.
func lastStatement(n Node) Node {
	for {
		seq, ok := n.(*Sequence)
		if !ok {
			return n
		}
		n = seq.Right
	}
}

func printCommand(sb *strings.Builder, c *Command) {
	first := true
	for i, arg := range c.Args {
		if !first {
			sb.WriteString(" ")
		}
		first = false
		sb.WriteString(quoteWord(arg, i == 0))
	}
	for _, r := range c.Redirects {
		if !first {
			sb.WriteString(" ")
		}
		first = false
		sb.WriteString(r.Kind.String())
		sb.WriteString(" ")
		sb.WriteString(quoteWord(r.Target, false))
	}
}

// quoteWord renders a word so that it lexes back into the same parts. head
// is set for the first word of a command, where bare braces are reserved.
func quoteWord(w *Word, head bool) string {
	if head && (w.IsBare("{") || w.IsBare("}")) {
		return `\` + w.Parts[0].Text
	}

	var sb strings.Builder
	for i, part := range w.Parts {
		switch part.Quote {
		case Bare:
			for j, r := range part.Text {
				if needsEscape(r) || (r == '#' && i == 0 && j == 0) {
					sb.WriteRune('\\')
				}
				sb.WriteRune(r)
			}
		case Escaped:
			sb.WriteString(`\`)
			sb.WriteString(part.Text)
		case SingleQuoted:
			sb.WriteString(quoteRun(part.Text, '\''))
		case DoubleQuoted:
			sb.WriteString(quoteRun(part.Text, '"'))
		}
	}
	return sb.String()
}

func quoteRun(text string, quote rune) string {
	var sb strings.Builder
	sb.WriteRune(quote)
	for _, r := range text {
		if r == quote || r == '\\' {
			sb.WriteRune('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteRune(quote)
	return sb.String()
}

func needsEscape(r rune) bool {
	return isSpace(r) || isOperatorStart(r) || r == '\\' || r == '\'' || r == '"'
}

// Dump writes an indented debug view of the tree.
func Dump(w io.Writer, n Node) {
	dump(w, n, 0)
}

func dump(w io.Writer, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := n.(type) {
	case nil:
		fmt.Fprintf(w, "%s<empty>\n", indent)
	case *Command:
		var args []string
		for _, a := range n.Args {
			args = append(args, fmt.Sprintf("%q", a.Literal()))
		}
		fmt.Fprintf(w, "%sCommand [%s]", indent, strings.Join(args, " "))
		for _, r := range n.Redirects {
			fmt.Fprintf(w, " %s %q", r.Kind, r.Target.Literal())
		}
		fmt.Fprintln(w)
	case *Pipe:
		if n.StderrMerged {
			fmt.Fprintf(w, "%sPipe (stderr merged)\n", indent)
		} else {
			fmt.Fprintf(w, "%sPipe\n", indent)
		}
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *Sequence:
		fmt.Fprintf(w, "%sSequence\n", indent)
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *And:
		fmt.Fprintf(w, "%sAnd\n", indent)
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *Or:
		fmt.Fprintf(w, "%sOr\n", indent)
		dump(w, n.Left, depth+1)
		dump(w, n.Right, depth+1)
	case *Background:
		fmt.Fprintf(w, "%sBackground\n", indent)
		dump(w, n.Child, depth+1)
	case *Subshell:
		fmt.Fprintf(w, "%sSubshell\n", indent)
		dump(w, n.Child, depth+1)
	case *Group:
		fmt.Fprintf(w, "%sGroup\n", indent)
		dump(w, n.Child, depth+1)
	}
}
