package syntax

// Node is a node of the command syntax tree. The set of implementations is
// closed: *Command, *Pipe, *Sequence, *And, *Or, *Background, *Subshell and
// *Group.
type Node interface {
	node()
}

// RedirKind is the kind of an I/O redirection.
type RedirKind int

const (
	RedirIn        RedirKind = iota // < file
	RedirOut                        // > file
	RedirAppend                     // >> file
	RedirErrOut                     // &> file
	RedirErrAppend                  // &>> file
)

func (k RedirKind) String() string {
	switch k {
	case RedirIn:
		return "<"
	case RedirOut:
		return ">"
	case RedirAppend:
		return ">>"
	case RedirErrOut:
		return "&>"
	case RedirErrAppend:
		return "&>>"
	}
	return "?"
}

func redirKindOf(k TokenKind) RedirKind {
	switch k {
	case TokenRedirOut:
		return RedirOut
	case TokenRedirAppend:
		return RedirAppend
	case TokenRedirErrOut:
		return RedirErrOut
	case TokenRedirErrAppend:
		return RedirErrAppend
	default:
		return RedirIn
	}
}

// Redirect is a single redirection; a command applies its redirections in
// order so later ones override earlier ones for the same stream.
type Redirect struct {
	Kind   RedirKind
	Target *Word
}

// Command is a simple command: a program name, its arguments and redirections.
// Args may be empty if the command consists only of redirections.
type Command struct {
	Args      []*Word
	Redirects []Redirect
}

// Pipe connects the output of Left to the input of Right. Left holds every
// upstream stage; Right is a single stage.
type Pipe struct {
	// StderrMerged is set for |&, sending Left's stderr down the pipe too.
	StderrMerged bool
	Left, Right  Node
}

// Sequence runs Left then Right.
type Sequence struct {
	Left, Right Node
}

// And runs Right only if Left succeeds.
type And struct {
	Left, Right Node
}

// Or runs Right only if Left fails.
type Or struct {
	Left, Right Node
}

// Background runs Child asynchronously as a job.
type Background struct {
	Child Node
}

// Subshell runs Child in a separate process.
type Subshell struct {
	Child Node
}

// Group runs Child in the current shell.
type Group struct {
	Child Node
}

func (*Command) node()    {}
func (*Pipe) node()       {}
func (*Sequence) node()   {}
func (*And) node()        {}
func (*Or) node()         {}
func (*Background) node() {}
func (*Subshell) node()   {}
func (*Group) node()      {}

// Stages flattens a left-leaning chain of pipes into its stages in execution
// order. merged[i] reports whether stage i's stderr joins the pipe to stage
// i+1. A non-pipe node is a single stage.
func Stages(n Node) (stages []Node, merged []bool) {
	for {
		p, ok := n.(*Pipe)
		if !ok {
			stages = append(stages, n)
			break
		}
		stages = append(stages, p.Right)
		merged = append(merged, p.StderrMerged)
		n = p.Left
	}

	// Collected right to left.
	for i, j := 0, len(stages)-1; i < j; i, j = i+1, j-1 {
		stages[i], stages[j] = stages[j], stages[i]
	}
	for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
		merged[i], merged[j] = merged[j], merged[i]
	}
	return stages, merged
}
