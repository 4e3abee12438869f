// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

import "fmt"

// Walk traverses a syntax tree in depth-first order: it starts by calling
// f(node); node must not be nil. If f returns true, Walk invokes f
// recursively for each of the non-nil children of node, followed by
// f(nil).
func Walk(node Node, f func(Node) bool) {
	if !f(node) {
		return
	}
	switch x := node.(type) {
	case *Lit:
	case *ExecCmd:
		for _, arg := range x.Args {
			Walk(arg, f)
		}
	case *RedirCmd:
		Walk(x.Cmd, f)
		if x.Word != nil {
			Walk(x.Word, f)
		}
	case *PipeCmd:
		Walk(x.Left, f)
		Walk(x.Right, f)
	case *ListCmd:
		Walk(x.Left, f)
		Walk(x.Right, f)
	case *BackCmd:
		Walk(x.Cmd, f)
	case *SubshellCmd:
		Walk(x.Cmd, f)
	default:
		panic(fmt.Sprintf("syntax.Walk: unexpected node type %T", x))
	}
	f(nil)
}
