// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	maybeio "github.com/google/renameio/v2/maybe"
	"golang.org/x/sync/errgroup"
)

// defaultBlockSize is the read block size when -s is not given.
const defaultBlockSize = 1024

// maxBlockSize bounds -s to [1, 2^20].
const maxBlockSize = 1 << 20

type splitConfig struct {
	blockSize int
	lines     int // split after this many newlines, if > 0
	bytes     int // split after this many bytes, if > 0
	procs     int // concurrent workers, if > 0
}

// psplit splits each input file, or stdin, into consecutive chunk files
// named after the input with an index appended, starting at 0.
func (r *Runner) psplit(ctx context.Context, args []string) uint8 {
	cfg := splitConfig{blockSize: defaultBlockSize}
	var files []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			files = append(files, arg)
			continue
		}
		if arg == "-h" {
			r.outf("Uso: psplit [-l NLINES] [-b NBYTES] [-s BSIZE] [-p PROCS] [FILE1] [FILE2]...\n")
			r.outf("Opciones:\n")
			r.outf("-l NLINES Número máximo de líneas por fichero.\n")
			r.outf("-b NBYTES Número máximo de bytes por fichero.\n")
			r.outf("-s BSIZE  Tamaño en bytes de los bloques leídos de [FILEn] o stdin.\n")
			r.outf("-p PROCS  Número máximo de procesos simultáneos.\n")
			r.outf("-h        Ayuda\n")
			r.outf("\n")
			return 0
		}
		n, opt, ok := optArg(args, &i)
		if !ok {
			r.errf("Usage: psplit [-l NLINES] [-b NBYTES] [-s BSIZE] [-p PROCS] [FILE1] [FILE2]...\n")
			return 2
		}
		switch opt {
		case "-s":
			if n < 1 || n > maxBlockSize {
				r.outf("psplit: Opción -s no válida\n")
				return 1
			}
			cfg.blockSize = n
		case "-l":
			if n == 0 {
				r.outf("psplit: Opción -l no válida, debe de establecer el número de lineas\n")
				return 1
			}
			cfg.lines = n
		case "-b":
			if n == 0 {
				r.outf("psplit: Opción -b no válida, debe de establecer un tamaño en bytes\n")
				return 1
			}
			cfg.bytes = n
		case "-p":
			if n == 0 {
				r.outf("psplit: Opción -p no válida\n")
				return 1
			}
			cfg.procs = n
		default:
			r.errf("Usage: psplit [-l NLINES] [-b NBYTES] [-s BSIZE] [-p PROCS] [FILE1] [FILE2]...\n")
			return 2
		}
	}
	if cfg.lines > 0 && cfg.bytes > 0 {
		r.outf("psplit: Opciones incompatibles\n")
		return 1
	}
	if len(files) == 0 {
		stdin := r.stdin
		if stdin == nil {
			stdin = bytes.NewReader(nil)
		}
		if err := r.splitReader("stdin", stdin, cfg); err != nil {
			r.errf("psplit: %v\n", err)
			return 1
		}
		return 0
	}
	if cfg.procs > 0 {
		// a worker pool capped at -p, in place of the original's
		// circular slot pool of child PIDs
		g := new(errgroup.Group)
		g.SetLimit(cfg.procs)
		for _, file := range files {
			file := file
			g.Go(func() error { return r.splitFile(file, cfg) })
		}
		if err := g.Wait(); err != nil {
			r.errf("psplit: %v\n", err)
			return 1
		}
		return 0
	}
	for _, file := range files {
		if err := r.splitFile(file, cfg); err != nil {
			r.errf("psplit: %v\n", err)
			return 1
		}
	}
	return 0
}

// optArg resolves the value of an option that takes one, accepting both
// "-l5" and "-l 5". It advances *i past a separate value argument. A
// missing value reports !ok; a non-numeric one resolves to 0, which every
// option rejects with its own diagnostic.
func optArg(args []string, i *int) (val int, opt string, ok bool) {
	arg := args[*i]
	if len(arg) > 2 {
		n, _ := strconv.Atoi(arg[2:])
		return n, arg[:2], true
	}
	if *i+1 >= len(args) {
		return 0, arg, false
	}
	*i++
	n, _ := strconv.Atoi(args[*i])
	return n, arg, true
}

func (r *Runner) splitFile(name string, cfg splitConfig) error {
	f, err := os.Open(r.absPath(name))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.splitReader(name, f, cfg)
}

// splitReader reads src in blocks of the configured size and writes the
// chunk files <name>0, <name>1, ... Each chunk is written atomically once
// complete; a final partial chunk is flushed at EOF. Empty input produces
// no files.
func (r *Runner) splitReader(name string, src io.Reader, cfg splitConfig) error {
	block := make([]byte, cfg.blockSize)
	var chunk bytes.Buffer
	idx := 0
	linesLeft := cfg.lines
	bytesLeft := cfg.bytes
	flush := func() error {
		target := r.absPath(fmt.Sprintf("%s%d", name, idx))
		idx++
		err := maybeio.WriteFile(target, chunk.Bytes(), 0o700)
		chunk.Reset()
		return err
	}
	for {
		n, err := src.Read(block)
		b := block[:n]
		for len(b) > 0 {
			switch {
			case cfg.lines > 0:
				i := bytes.IndexByte(b, '\n')
				if i < 0 {
					chunk.Write(b)
					b = nil
					break
				}
				chunk.Write(b[:i+1])
				b = b[i+1:]
				if linesLeft--; linesLeft == 0 {
					linesLeft = cfg.lines
					if err := flush(); err != nil {
						return err
					}
				}
			case cfg.bytes > 0:
				take := len(b)
				if bytesLeft < take {
					take = bytesLeft
				}
				chunk.Write(b[:take])
				b = b[take:]
				if bytesLeft -= take; bytesLeft == 0 {
					bytesLeft = cfg.bytes
					if err := flush(); err != nil {
						return err
					}
				}
			default:
				// neither -l nor -b: a single chunk takes everything
				chunk.Write(b)
				b = nil
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if chunk.Len() > 0 {
		return flush()
	}
	return nil
}
