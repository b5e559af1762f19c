package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape renders a compact s-expression of a tree for comparisons.
func shape(n Node) string {
	switch n := n.(type) {
	case nil:
		return "nil"
	case *Command:
		var parts []string
		for _, a := range n.Args {
			parts = append(parts, a.Literal())
		}
		for _, r := range n.Redirects {
			parts = append(parts, r.Kind.String()+r.Target.Literal())
		}
		return "Cmd(" + strings.Join(parts, " ") + ")"
	case *Pipe:
		op := "Pipe"
		if n.StderrMerged {
			op = "PipeErr"
		}
		return fmt.Sprintf("%s(%s,%s)", op, shape(n.Left), shape(n.Right))
	case *Sequence:
		return fmt.Sprintf("Seq(%s,%s)", shape(n.Left), shape(n.Right))
	case *And:
		return fmt.Sprintf("And(%s,%s)", shape(n.Left), shape(n.Right))
	case *Or:
		return fmt.Sprintf("Or(%s,%s)", shape(n.Left), shape(n.Right))
	case *Background:
		return fmt.Sprintf("Bg(%s)", shape(n.Child))
	case *Subshell:
		return fmt.Sprintf("Sub(%s)", shape(n.Child))
	case *Group:
		return fmt.Sprintf("Group(%s)", shape(n.Child))
	}
	return "?"
}

func TestParseShapes(t *testing.T) {
	cases := map[string]struct {
		line string
		want string
	}{
		"command":             {"echo hi", "Cmd(echo hi)"},
		"sequence":            {"cmd1 ; cmd2", "Seq(Cmd(cmd1),Cmd(cmd2))"},
		"sequence-left-fold":  {"a; b; c", "Seq(Seq(Cmd(a),Cmd(b)),Cmd(c))"},
		"trailing-semicolon":  {"a;", "Cmd(a)"},
		"and-or-left-assoc":   {"a && b || c", "Or(And(Cmd(a),Cmd(b)),Cmd(c))"},
		"or-and-left-assoc":   {"a || b && c", "And(Or(Cmd(a),Cmd(b)),Cmd(c))"},
		"pipe-left-leaning":   {"printf x | cat | cat", "Pipe(Pipe(Cmd(printf x),Cmd(cat)),Cmd(cat))"},
		"pipe-stderr":         {"make |& less", "PipeErr(Cmd(make),Cmd(less))"},
		"pipe-binds-tighter":  {"a | b && c | d", "And(Pipe(Cmd(a),Cmd(b)),Pipe(Cmd(c),Cmd(d)))"},
		"background":          {"sleep 1 &", "Bg(Cmd(sleep 1))"},
		"background-then":     {"a & b", "Seq(Bg(Cmd(a)),Cmd(b))"},
		"background-semi":     {"a & ; b", "Seq(Bg(Cmd(a)),Cmd(b))"},
		"background-last":     {"a; b &", "Seq(Cmd(a),Bg(Cmd(b)))"},
		"background-logical":  {"a && b &", "Bg(And(Cmd(a),Cmd(b)))"},
		"two-backgrounds":     {"a & b &", "Seq(Bg(Cmd(a)),Bg(Cmd(b)))"},
		"subshell":            {"(cd /tmp; ls)", "Sub(Seq(Cmd(cd /tmp),Cmd(ls)))"},
		"subshell-trailing":   {"(a;)", "Sub(Cmd(a))"},
		"subshell-pipe":       {"(a | b) | c", "Pipe(Sub(Pipe(Cmd(a),Cmd(b))),Cmd(c))"},
		"nested-subshell":     {"((a))", "Sub(Sub(Cmd(a)))"},
		"group":               {"{ a; b; }", "Group(Seq(Cmd(a),Cmd(b)))"},
		"group-background":    {"{ a & }", "Group(Bg(Cmd(a)))"},
		"brace-as-argument":   {"echo { }", "Cmd(echo { })"},
		"redirections":        {"cat < in > out", "Cmd(cat <in >out)"},
		"redirect-order":      {"cmd > a >> b &> c &>> d", "Cmd(cmd >a >>b &>c &>>d)"},
		"redirect-only":       {"> file", "Cmd(>file)"},
		"redirect-quoted":     {"echo > 'my file'", "Cmd(echo >my file)"},
		"redirect-before":     {"> out echo hi", "Cmd(echo hi >out)"},
		"comment-after":       {"echo a # ; b", "Cmd(echo a)"},
		"empty-quoted-arg":    {"printf '' x", "Cmd(printf  x)"},
		"escaped-brace-head":  {`\{ a`, "Cmd({ a)"},
		"quoted-brace-head":   {`'{' a`, "Cmd({ a)"},
		"pipe-into-subshell":  {"a | (b; c)", "Pipe(Cmd(a),Sub(Seq(Cmd(b),Cmd(c))))"},
		"background-subshell": {"(sleep 1; echo) &", "Bg(Sub(Seq(Cmd(sleep 1),Cmd(echo))))"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			n, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, shape(n))
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, line := range []string{"", "   ", "# just a comment"} {
		n, err := Parse(line)
		assert.NoError(t, err)
		assert.Nil(t, n)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		line string
		want error
	}{
		"missing-right-and":  {"a &&", ErrUnexpectedEOF},
		"missing-right-pipe": {"a |", ErrUnexpectedEOF},
		"leading-pipe":       {"| a", ErrUnexpectedToken},
		"double-semicolon":   {"a ;; b", ErrUnexpectedToken},
		"leading-semicolon":  {"; a", ErrUnexpectedToken},
		"unmatched-open":     {"(a", ErrUnmatchedParen},
		"unmatched-close":    {"a)", ErrUnexpectedToken},
		"empty-subshell":     {"()", ErrUnexpectedToken},
		"redirect-no-target": {"echo >", ErrMissingRedirectTarget},
		"redirect-operator":  {"echo > | x", ErrMissingRedirectTarget},
		"unterminated-quote": {"echo 'abc", ErrUnterminatedQuote},
		"dangling-escape":    {`echo \`, ErrDanglingEscape},
		"unmatched-brace":    {"{ a; ", ErrUnmatchedBrace},
		"brace-needs-sep":    {"{ a }", ErrUnmatchedBrace},
		"stray-brace":        {"a; }", ErrUnexpectedToken},
		"empty-group":        {"{ }", ErrUnexpectedToken},
		"only-ampersand":     {"&", ErrUnexpectedToken},
		"redirect-subshell":  {"(a) > f", ErrUnexpectedToken},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			n, err := Parse(tc.line)
			assert.Nil(t, n, "partial tree returned")
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestPrintRoundTrip(t *testing.T) {
	lines := []string{
		"echo hi",
		"a; b; c",
		"a && b || c",
		"printf x | cat |& cat",
		"a & b & c",
		"a; b &",
		"(cd /tmp; ls) | cat > /dev/null",
		"{ a; b & }",
		"(a | b) && (c || d) &",
		`echo 'single \' quote' "double \" quote" a\ b`,
		`echo '' "" \#notcomment x#y`,
		`echo "$HOME" '$HOME' \$HOME`,
		"cat < 'in file' >> out &> err &>> all",
		`\{ x; echo \}`,
		"a | (b; c) | d",
		"((a) && b)",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			first, err := Parse(line)
			require.NoError(t, err)

			printed := Print(first)
			second, err := Parse(printed)
			require.NoError(t, err, "reparsing %q", printed)

			assert.Equal(t, shape(first), shape(second), "printed as %q", printed)
			assert.Equal(t, printed, Print(second), "printing is not stable")
		})
	}
}

func TestPrintCanonical(t *testing.T) {
	cases := map[string]string{
		"a;b":            "a; b",
		"a&b":            "a & b",
		"a&&b||c":        "a && b || c",
		"(a;b)&":         "(a; b) &",
		"{ a;b;}":        "{ a; b; }",
		"echo 'x y'":     "echo 'x y'",
		"cat<in>out":     "cat < in > out",
		"make|&tee log":  "make |& tee log",
		"sleep 5 & ; ls": "sleep 5 & ls",
	}

	for line, want := range cases {
		t.Run(line, func(t *testing.T) {
			n, err := Parse(line)
			require.NoError(t, err)
			assert.Equal(t, want, Print(n))
		})
	}
}

func TestPrintWrapsNonCanonicalTrees(t *testing.T) {
	tree := &And{
		Left:  &Command{Args: []*Word{NewWord("a")}},
		Right: &Sequence{Left: &Command{Args: []*Word{NewWord("b")}}, Right: &Command{Args: []*Word{NewWord("c")}}},
	}
	assert.Equal(t, "a && (b; c)", Print(tree))
}

func TestStages(t *testing.T) {
	n, err := Parse("a | b |& c | (d; e)")
	require.NoError(t, err)

	stages, merged := Stages(n)
	require.Len(t, stages, 4)
	assert.Equal(t, "Cmd(a)", shape(stages[0]))
	assert.Equal(t, "Cmd(b)", shape(stages[1]))
	assert.Equal(t, "Cmd(c)", shape(stages[2]))
	assert.Equal(t, "Sub(Seq(Cmd(d),Cmd(e)))", shape(stages[3]))
	assert.Equal(t, []bool{false, true, false}, merged)

	single, merged := Stages(&Command{Args: []*Word{NewWord("x")}})
	assert.Len(t, single, 1)
	assert.Empty(t, merged)
}

func TestDumpGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]string{
		"dump-pipeline":   `printf x | cat |& grep -v "y z" > out`,
		"dump-job-list":   `sleep 10 & (cd /tmp && ls) || echo failed; { pwd; }`,
		"dump-redirects":  `cmd < in >> log &>> all`,
		"dump-background": `a && b &`,
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Parse(line)
			require.NoError(t, err)

			var buf bytes.Buffer
			Dump(&buf, n)
			g.Assert(t, name, buf.Bytes())
		})
	}
}
