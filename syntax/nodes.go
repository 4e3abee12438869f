// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

// Node represents a syntax tree node.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() Pos
	// End returns the position of the character immediately after the node.
	End() Pos
}

// Pos is the position of a character within a source line, as a 1-based
// offset. The zero value means an unknown or missing position, such as the
// position of an empty command.
type Pos uint32

// IsValid reports whether the position contains useful position information.
func (p Pos) IsValid() bool { return p > 0 }

// Offset returns the 0-based byte offset within the source line.
func (p Pos) Offset() int { return int(p) - 1 }

func posAddStr(p Pos, s string) Pos {
	if !p.IsValid() {
		return p
	}
	return p + Pos(len(s))
}

// MaxArgs bounds the number of arguments of a simple command, including
// the command name itself: a command may carry at most MaxArgs-1 of them,
// and one with MaxArgs or more is rejected with [ErrTooManyArgs].
const MaxArgs = 16

// Command represents all nodes that the evaluator can run. Each line of
// input parses to exactly one Command, which owns its children.
type Command interface {
	Node
	commandNode()
}

func (*ExecCmd) commandNode()     {}
func (*RedirCmd) commandNode()    {}
func (*PipeCmd) commandNode()     {}
func (*ListCmd) commandNode()     {}
func (*BackCmd) commandNode()     {}
func (*SubshellCmd) commandNode() {}

// Lit is a word literal: a run of characters delimited by whitespace or by
// one of the reserved operator characters. The value is copied out of the
// input line, so the tree does not alias the line buffer.
type Lit struct {
	ValuePos Pos
	Value    string
}

func (l *Lit) Pos() Pos { return l.ValuePos }
func (l *Lit) End() Pos { return posAddStr(l.ValuePos, l.Value) }

// ExecCmd is a simple command: a name followed by its arguments. An empty
// line parses to an ExecCmd with no arguments, which runs as a no-op.
type ExecCmd struct {
	Args []*Lit
}

func (c *ExecCmd) Pos() Pos {
	if len(c.Args) == 0 {
		return 0
	}
	return c.Args[0].Pos()
}

func (c *ExecCmd) End() Pos {
	if len(c.Args) == 0 {
		return 0
	}
	return c.Args[len(c.Args)-1].End()
}

// RedirCmd wraps a command with a single input or output redirect. A
// command with several redirects parses to nested RedirCmd nodes, the
// outermost holding the redirect that appeared last.
type RedirCmd struct {
	OpPos Pos
	Op    RedirOperator
	Word  *Lit
	Cmd   Command
}

func (c *RedirCmd) Pos() Pos {
	if p := c.Cmd.Pos(); p.IsValid() && p < c.OpPos {
		return p
	}
	return c.OpPos
}
func (c *RedirCmd) End() Pos { return c.Word.End() }

// PipeCmd connects the standard output of Left to the standard input of
// Right. Pipelines are right-associative; "a | b | c" parses to
// PipeCmd{a, PipeCmd{b, c}}.
type PipeCmd struct {
	OpPos Pos
	Left  Command
	Right Command
}

func (c *PipeCmd) Pos() Pos { return c.Left.Pos() }
func (c *PipeCmd) End() Pos { return c.Right.End() }

// ListCmd runs Left to completion and then Right. Neither side's exit
// status gates the other.
type ListCmd struct {
	OpPos Pos
	Left  Command
	Right Command
}

func (c *ListCmd) Pos() Pos { return c.Left.Pos() }
func (c *ListCmd) End() Pos { return c.Right.End() }

// BackCmd runs its child without waiting for it.
type BackCmd struct {
	AmpPos Pos
	Cmd    Command
}

func (c *BackCmd) Pos() Pos {
	if p := c.Cmd.Pos(); p.IsValid() {
		return p
	}
	return c.AmpPos
}
func (c *BackCmd) End() Pos { return c.AmpPos + 1 }

// SubshellCmd runs its child as a group in a nested shell environment, so
// that directory and environment changes do not escape to the parent.
type SubshellCmd struct {
	Lparen, Rparen Pos
	Cmd            Command
}

func (c *SubshellCmd) Pos() Pos { return c.Lparen }
func (c *SubshellCmd) End() Pos { return c.Rparen + 1 }
