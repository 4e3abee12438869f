// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func runPsplit(tb testing.TB, dir, src string, stdin string) string {
	tb.Helper()
	var cb concBuffer
	var in strings.Reader
	in.Reset(stdin)
	r, err := New(Dir(dir), StdIO(&in, &cb, &cb))
	if err != nil {
		tb.Fatal(err)
	}
	if err := r.Run(context.Background(), parse(tb, src)); err != nil {
		if _, ok := err.(ExitStatus); !ok {
			tb.Fatal(err)
		}
	}
	return cb.String()
}

func readChunks(tb testing.TB, dir, name string) []string {
	tb.Helper()
	var chunks []string
	for i := 0; ; i++ {
		data, err := os.ReadFile(filepath.Join(dir, fmt.Sprintf("%s%d", name, i)))
		if err != nil {
			return chunks
		}
		chunks = append(chunks, string(data))
	}
}

func TestPsplitLines(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	input := "one\ntwo\nthree\nfour\nfive\n"
	c.Assert(os.WriteFile(filepath.Join(dir, "input.txt"), []byte(input), 0o644), qt.IsNil)

	out := runPsplit(t, dir, "psplit -l 2 -s 16 input.txt", "")
	c.Assert(out, qt.Equals, "")
	c.Assert(readChunks(t, dir, "input.txt"), qt.DeepEquals, []string{
		"one\ntwo\n",
		"three\nfour\n",
		"five\n",
	})
}

func TestPsplitLinesNoTrailingNewline(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "in"), []byte("a\nb\nc"), 0o644), qt.IsNil)

	runPsplit(t, dir, "psplit -l 2 in", "")
	c.Assert(readChunks(t, dir, "in"), qt.DeepEquals, []string{"a\nb\n", "c"})
}

func TestPsplitBytes(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "data"), []byte("abcdefgh"), 0o644), qt.IsNil)

	// a block size smaller than the chunk size exercises carrying a
	// chunk across reads
	runPsplit(t, dir, "psplit -b 3 -s 2 data", "")
	c.Assert(readChunks(t, dir, "data"), qt.DeepEquals, []string{"abc", "def", "gh"})
}

func TestPsplitStdin(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()

	runPsplit(t, dir, "psplit -b 4", "abcdefgh")
	c.Assert(readChunks(t, dir, "stdin"), qt.DeepEquals, []string{"abcd", "efgh"})
}

func TestPsplitNoLimit(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "whole"), []byte("everything\n"), 0o644), qt.IsNil)

	runPsplit(t, dir, "psplit whole", "")
	c.Assert(readChunks(t, dir, "whole"), qt.DeepEquals, []string{"everything\n"})
}

func TestPsplitEmptyInput(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "empty"), nil, 0o644), qt.IsNil)

	runPsplit(t, dir, "psplit -l 2 empty", "")
	c.Assert(readChunks(t, dir, "empty"), qt.HasLen, 0)
}

func TestPsplitManyFiles(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("f%d", i)
		c.Assert(os.WriteFile(filepath.Join(dir, name), []byte("x\ny\nz\n"), 0o644), qt.IsNil)
	}

	// -p caps the concurrent workers; the result must not depend on it
	runPsplit(t, dir, "psplit -l 1 -p 2 f0 f1 f2 f3 f4", "")
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("f%d", i)
		c.Assert(readChunks(t, dir, name), qt.DeepEquals, []string{"x\n", "y\n", "z\n"},
			qt.Commentf("input %s", name))
	}
}

func TestPsplitChunkMode(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	dir := t.TempDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "m"), []byte("abcd"), 0o644), qt.IsNil)

	runPsplit(t, dir, "psplit -b 2 m", "")
	info, err := os.Stat(filepath.Join(dir, "m0"))
	c.Assert(err, qt.IsNil)
	c.Assert(info.Mode().Perm(), qt.Equals, os.FileMode(0o700))
}

func TestPsplitErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"psplit -l 2 -b 3 x", "psplit: Opciones incompatibles\n"},
		{"psplit -s 0 x", "psplit: Opción -s no válida\n"},
		{"psplit -s 1048577 x", "psplit: Opción -s no válida\n"},
		{"psplit -s banana x", "psplit: Opción -s no válida\n"},
		{"psplit -l 0 x", "psplit: Opción -l no válida, debe de establecer el número de lineas\n"},
		{"psplit -b 0 x", "psplit: Opción -b no válida, debe de establecer un tamaño en bytes\n"},
		{"psplit -p 0 x", "psplit: Opción -p no válida\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run("", func(t *testing.T) {
			t.Parallel()
			c := qt.New(t)
			got := runPsplit(t, t.TempDir(), tc.src, "")
			c.Assert(got, qt.Equals, tc.want, qt.Commentf("src: %q", tc.src))
		})
	}
}

func TestPsplitUsage(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	got := runPsplit(t, t.TempDir(), "psplit -h", "")
	c.Assert(strings.HasPrefix(got, "Uso: psplit [-l NLINES] [-b NBYTES] [-s BSIZE] [-p PROCS]"), qt.IsTrue)
}

func TestPsplitMissingFile(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	got := runPsplit(t, t.TempDir(), "psplit -l 1 nowhere", "")
	c.Assert(strings.HasPrefix(got, "psplit: "), qt.IsTrue)
}

func TestJobTable(t *testing.T) {
	t.Parallel()
	c := qt.New(t)
	jt := newJobTable()
	c.Assert(jt.live(), qt.HasLen, 0)

	for pid := 100; pid < 100+maxJobs; pid++ {
		jt.insert(pid)
	}
	c.Assert(jt.live(), qt.HasLen, maxJobs)

	// a full table drops the record silently
	jt.insert(999)
	c.Assert(jt.live(), qt.HasLen, maxJobs)
	for _, pid := range jt.live() {
		c.Assert(pid, qt.Not(qt.Equals), 999)
	}

	jt.remove(103)
	c.Assert(jt.live(), qt.HasLen, maxJobs-1)
	jt.insert(999)
	c.Assert(jt.live()[3], qt.Equals, 999)
}
