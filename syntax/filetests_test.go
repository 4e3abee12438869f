// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package syntax

// The test cases shared by the parser and printer tests. Each case lists
// one or more source strings which parse to the same tree; the first
// string is the canonical form, which the printer must reproduce.
type testCase struct {
	Strs []string
	cmd  Command
}

func lit(s string) *Lit { return &Lit{Value: s} }

func call(words ...string) *ExecCmd {
	c := &ExecCmd{}
	for _, w := range words {
		c.Args = append(c.Args, lit(w))
	}
	return c
}

func redir(cmd Command, op RedirOperator, word string) *RedirCmd {
	return &RedirCmd{Op: op, Word: lit(word), Cmd: cmd}
}

var fileTests = []testCase{
	{
		Strs: []string{""},
		cmd:  call(),
	},
	{
		Strs: []string{"foo", "  foo ", "\tfoo\n"},
		cmd:  call("foo"),
	},
	{
		Strs: []string{"echo hello world"},
		cmd:  call("echo", "hello", "world"),
	},
	{
		Strs: []string{"ls -la /tmp"},
		cmd:  call("ls", "-la", "/tmp"),
	},
	{
		Strs: []string{"cat < in", "cat <in", "< in cat"},
		cmd:  redir(call("cat"), RdrIn, "in"),
	},
	{
		Strs: []string{"echo hi > out", "echo hi >out", "echo > out hi"},
		cmd:  redir(call("echo", "hi"), RdrOut, "out"),
	},
	{
		Strs: []string{"echo hi >> log", "echo hi >>log"},
		cmd:  redir(call("echo", "hi"), AppOut, "log"),
	},
	{
		Strs: []string{"cat < in > out", "< in > out cat", "cat <in >out"},
		cmd:  redir(redir(call("cat"), RdrIn, "in"), RdrOut, "out"),
	},
	{
		Strs: []string{"> f"},
		cmd:  redir(call(), RdrOut, "f"),
	},
	{
		Strs: []string{"< x ; a"},
		cmd: &ListCmd{
			Left:  redir(call(), RdrIn, "x"),
			Right: call("a"),
		},
	},
	{
		Strs: []string{"a | b", "a|b"},
		cmd:  &PipeCmd{Left: call("a"), Right: call("b")},
	},
	{
		Strs: []string{"a | b | c"},
		cmd: &PipeCmd{Left: call("a"), Right: &PipeCmd{
			Left: call("b"), Right: call("c"),
		}},
	},
	{
		Strs: []string{"a ; b", "a;b", "a ;b"},
		cmd:  &ListCmd{Left: call("a"), Right: call("b")},
	},
	{
		Strs: []string{"a ; b ; c"},
		cmd: &ListCmd{Left: call("a"), Right: &ListCmd{
			Left: call("b"), Right: call("c"),
		}},
	},
	{
		Strs: []string{"a ;", "a;"},
		cmd:  &ListCmd{Left: call("a"), Right: call()},
	},
	{
		Strs: []string{"sleep 1 &", "sleep 1&"},
		cmd:  &BackCmd{Cmd: call("sleep", "1")},
	},
	{
		Strs: []string{"a & &"},
		cmd:  &BackCmd{Cmd: &BackCmd{Cmd: call("a")}},
	},
	{
		Strs: []string{"a & ; b"},
		cmd:  &ListCmd{Left: &BackCmd{Cmd: call("a")}, Right: call("b")},
	},
	{
		Strs: []string{"a | b &"},
		cmd:  &BackCmd{Cmd: &PipeCmd{Left: call("a"), Right: call("b")}},
	},
	{
		Strs: []string{"(a)", "( a )"},
		cmd:  &SubshellCmd{Cmd: call("a")},
	},
	{
		Strs: []string{"(a ; b)", "(a;b)"},
		cmd: &SubshellCmd{Cmd: &ListCmd{
			Left: call("a"), Right: call("b"),
		}},
	},
	{
		Strs: []string{"(a ; b) > f"},
		cmd: redir(&SubshellCmd{Cmd: &ListCmd{
			Left: call("a"), Right: call("b"),
		}}, RdrOut, "f"),
	},
	{
		Strs: []string{"(a | b) &"},
		cmd: &BackCmd{Cmd: &SubshellCmd{
			Cmd: &PipeCmd{Left: call("a"), Right: call("b")},
		}},
	},
	{
		Strs: []string{"(a) | (b)"},
		cmd: &PipeCmd{
			Left:  &SubshellCmd{Cmd: call("a")},
			Right: &SubshellCmd{Cmd: call("b")},
		},
	},
	{
		Strs: []string{"grep -v foo < in | wc -l > out ; echo done &"},
		cmd: &ListCmd{
			Left: &PipeCmd{
				Left:  redir(call("grep", "-v", "foo"), RdrIn, "in"),
				Right: redir(call("wc", "-l"), RdrOut, "out"),
			},
			Right: &BackCmd{Cmd: call("echo", "done")},
		},
	},
}
