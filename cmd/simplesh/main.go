// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// simplesh is a small interactive shell: simple commands, redirects,
// pipelines, lists, background commands and subshells, plus the builtins
// cwd, cd, exit, psplit and bjobs.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"mvdan.cc/simplesh/interp"
	"mvdan.cc/simplesh/syntax"
)

// The debug levels are a bitmask.
const (
	dbgCmd   = 1 << iota // print each parsed command
	dbgTrace             // trace command calls while they run
)

var (
	command  = flag.String("c", "", "command to be executed")
	dbgLevel = flag.Int("d", 0, "set debug level to N")
	showHelp = flag.Bool("h", false, "help")
)

func main() {
	os.Exit(main1())
}

func main1() int {
	flag.Usage = usage
	flag.Parse()
	if *showHelp {
		usage()
		return 0
	}
	err := runAll()
	var es interp.ExitStatus
	if errors.As(err, &es) {
		return int(es)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: simplesh [-d N] [-h] [-c command]\n")
	flag.PrintDefaults()
}

func runAll() error {
	// Ctrl-C at the prompt is swallowed, and the ignored disposition is
	// inherited by spawned commands across exec; Ctrl-\ likewise.
	signal.Ignore(os.Interrupt, syscall.SIGQUIT)

	opts := []interp.RunnerOption{
		interp.StdIO(os.Stdin, os.Stdout, os.Stderr),
	}
	if *dbgLevel&dbgTrace != 0 {
		opts = append(opts, interp.Trace(os.Stderr))
	}
	r, err := interp.New(opts...)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if *command != "" {
		// unlike the interactive loop, -c has no next line to fall
		// back to: a syntax error or a failing command sets the exit
		// status of the shell itself
		cmd, err := syntax.NewParser().Parse(*command, "command")
		if err != nil {
			return err
		}
		if *dbgLevel&dbgCmd != 0 {
			fmt.Fprintf(os.Stderr, "simplesh: %s\n", syntax.NewPrinter().String(cmd))
		}
		return r.Run(ctx, cmd)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return runInteractive(ctx, r, os.Stdin, os.Stdout, os.Stderr)
	}
	return runLines(ctx, r, os.Stdin, os.Stderr)
}

// run parses and evaluates one command line. The returned error is nil
// for syntax errors, which are printed to stderr and abandon the line;
// anything non-nil means the shell should stop.
func run(ctx context.Context, r *interp.Runner, src, name string, stderr io.Writer) error {
	parser := syntax.NewParser()
	cmd, err := parser.Parse(src, name)
	if err != nil {
		if errors.Is(err, syntax.ErrTooManyArgs) {
			return err
		}
		fmt.Fprintln(stderr, err)
		return nil
	}
	if *dbgLevel&dbgCmd != 0 {
		fmt.Fprintf(stderr, "simplesh: %s\n", syntax.NewPrinter().String(cmd))
	}
	err = r.Run(ctx, cmd)
	if err != nil && (r.Exited() || !errors.As(err, new(interp.ExitStatus))) {
		return err
	}
	return nil
}

// runLines evaluates stdin line by line without prompting, for use when
// the input is not a terminal.
func runLines(ctx context.Context, r *interp.Runner, stdin io.Reader, stderr io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := run(ctx, r, scanner.Text(), "", stderr); err != nil {
			return err
		}
		if r.Exited() {
			return nil
		}
	}
	return scanner.Err()
}

func runInteractive(ctx context.Context, r *interp.Runner, stdin io.Reader, stdout, stderr io.Writer) error {
	reader := bufio.NewReader(stdin)
	for {
		fmt.Fprint(stdout, prompt(r))
		line, err := reader.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		if err := run(ctx, r, line, "", stderr); err != nil {
			return err
		}
		if r.Exited() {
			return nil
		}
		if err == io.EOF {
			return nil
		}
	}
}

// prompt renders "<user>@<basename-of-cwd>> ".
func prompt(r *interp.Runner) string {
	name := "?"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return fmt.Sprintf("%s@%s> ", name, filepath.Base(r.Dir))
}
