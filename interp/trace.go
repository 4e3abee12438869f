// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"io"
	"strings"
)

// tracer prints each command call like a shell with '-x' set would,
// prefixed with "+ ". A nil tracer is valid and does nothing, so call
// sites need no guards.
type tracer struct {
	buf bytes.Buffer
	out io.Writer
}

func (t *tracer) call(args []string) {
	if t == nil {
		return
	}
	t.buf.Reset()
	t.buf.WriteString("+ ")
	t.buf.WriteString(strings.Join(args, " "))
	t.buf.WriteByte('\n')
	t.out.Write(t.buf.Bytes())
}
