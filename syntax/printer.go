// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Printer holds the internal state of the printing mechanism of a program.
type Printer struct {
	bufWriter
}

// NewPrinter allocates a new Printer.
func NewPrinter() *Printer {
	return &Printer{bufWriter: bufio.NewWriter(nil)}
}

type bufWriter interface {
	io.Writer
	WriteString(string) (int, error)
	WriteByte(byte) error
	Reset(io.Writer)
	Flush() error
}

// Print writes the command in canonical source form, which parses back to
// an equal tree. The output carries no trailing newline.
func (p *Printer) Print(w io.Writer, cmd Command) error {
	p.Reset(w)
	p.command(cmd)
	return p.Flush()
}

// String is a convenience wrapper around [Printer.Print].
func (p *Printer) String(cmd Command) string {
	var sb strings.Builder
	p.Print(&sb, cmd)
	return sb.String()
}

func (p *Printer) command(cmd Command) {
	switch x := cmd.(type) {
	case *ExecCmd:
		for i, arg := range x.Args {
			if i > 0 {
				p.WriteByte(' ')
			}
			p.WriteString(arg.Value)
		}
	case *RedirCmd:
		p.command(x.Cmd)
		if !emptyExec(x.Cmd) {
			p.WriteByte(' ')
		}
		p.WriteString(x.Op.String())
		p.WriteByte(' ')
		p.WriteString(x.Word.Value)
	case *PipeCmd:
		p.command(x.Left)
		p.WriteString(" |")
		if !emptyExec(x.Right) {
			p.WriteByte(' ')
			p.command(x.Right)
		}
	case *ListCmd:
		p.command(x.Left)
		p.WriteString(" ;")
		if !emptyExec(x.Right) {
			p.WriteByte(' ')
			p.command(x.Right)
		}
	case *BackCmd:
		p.command(x.Cmd)
		if !emptyExec(x.Cmd) {
			p.WriteByte(' ')
		}
		p.WriteByte('&')
	case *SubshellCmd:
		p.WriteByte('(')
		p.command(x.Cmd)
		p.WriteByte(')')
	default:
		panic(fmt.Sprintf("unhandled command node: %T", x))
	}
}

// emptyExec reports whether cmd prints as the empty string, so that the
// printer can avoid stray separating spaces around it.
func emptyExec(cmd Command) bool {
	x, ok := cmd.(*ExecCmd)
	return ok && len(x.Args) == 0
}
