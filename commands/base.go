package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/josephlewis42/jsh/core/vos"
	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/term"
)

// CommandFunc is a leaf builtin: it gets the full argv (including its own
// name) and the streams to use, and returns an exit status.
type CommandFunc func(stdio vos.VIO, args []string) int

// Command is a registered leaf builtin.
type Command struct {
	// Usage holds the one line synopsis shown by help.
	Usage string
	Main  CommandFunc
}

// AllCommands holds the leaf builtins by name.
var AllCommands = make(map[string]Command)

func addCmd(name, usage string, cmd CommandFunc) {
	AllCommands[name] = Command{Usage: usage, Main: cmd}
}

// ListCommands returns the registered names in order.
func ListCommands() []string {
	var out []string
	for name := range AllCommands {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a sone line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was succcessful call the callback. Bad
// options exit with status 2.
func (s *SimpleCommand) Run(stdio vos.VIO, args []string, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(args, nil)
	if err != nil {
		fmt.Fprintf(stdio.Stderr(), "%s: %s\n", args[0], err)
		fmt.Fprint(stdio.Stderr(), "usage: ")
		fmt.Fprintln(stdio.Stderr(), s.Use)
		return 2
	}

	if *s.ShowHelp {
		s.PrintHelp(stdio.Stdout())
		return 0
	}

	return callback()
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

// ColorPrinter colours output according to a --color flag.
type ColorPrinter struct {
	value *string
	out   io.Writer
}

// Init registers the --color flag with the default mode and remembers the
// writer that auto mode checks for a terminal.
func (c *ColorPrinter) Init(flags *getopt.Set, out io.Writer, mode string) {
	c.out = out
	switch mode {
	case colorAlways, colorNever:
	default:
		mode = colorAuto
	}
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		mode,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case c.value == nil || *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		return IsTerminal(c.out)
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		// The package level NoColor is decided for os.Stdout only.
		color.EnableColor()
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
