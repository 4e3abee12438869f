// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// Package interp implements an interpreter that executes simplesh command
// trees: it spawns external processes, wires pipes and redirects, runs the
// builtins in-process, and keeps the background job table.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"mvdan.cc/simplesh/syntax"
)

// A Runner interprets simplesh command trees. It can be reused, but it is
// not safe for concurrent use. Use [New] to build a new Runner.
//
// Note that writes to Stdout may be concurrent if background commands are
// used: their termination notices arrive from reaper goroutines.
//
// Runner's exported fields are meant to be configured via [RunnerOption];
// once a Runner has been created, the fields should be treated as
// read-only.
type Runner struct {
	// Env is the environment of the interpreter and of every spawned
	// process, in the usual "key=value" form. OLDPWD is dropped from the
	// initial environment; only a successful cd defines it. It can only
	// be set via [Env].
	Env []string

	// Dir is the working directory of the interpreter, which must be an
	// absolute path. It can only be set via [Dir].
	Dir string

	// execHandler is responsible for executing programs. It must not be nil.
	execHandler ExecHandlerFunc

	// openHandler is responsible for opening redirect files. It must not
	// be nil.
	openHandler OpenHandlerFunc

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// jobs is the process-wide background job table, shared with every
	// sub-runner.
	jobs *jobTable

	// reexecPath is the binary spawned as "reexecPath -c <src>" to run a
	// compound command in the background as one OS process.
	reexecPath string

	tracer *tracer

	usedNew bool

	// The exit status of the last command run.
	exit uint8

	// exitShell is set when the whole shell should stop, either by the
	// exit builtin or by a fatal error.
	exitShell bool

	// err is a fatal error; anything other than an [ExitStatus] stops
	// the shell.
	err error
}

// New creates a new Runner, applying a number of options. If applying any
// of the options results in an error, it is returned.
//
// Any unset options fall back to their defaults: the process environment
// and working directory, discarded standard output and error, and no
// standard input.
func New(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		usedNew:     true,
		execHandler: DefaultExecHandler(),
		openHandler: DefaultOpenHandler(),
		jobs:        newJobTable(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.Env == nil {
		Env(nil)(r)
	}
	if r.Dir == "" {
		if err := Dir("")(r); err != nil {
			return nil, err
		}
	}
	if r.stdout == nil || r.stderr == nil {
		StdIO(r.stdin, r.stdout, r.stderr)(r)
	}
	if r.reexecPath == "" {
		r.reexecPath, _ = os.Executable()
	}
	return r, nil
}

// RunnerOption can be passed to [New] to alter a [Runner]'s behaviour.
type RunnerOption func(*Runner) error

// Env sets the interpreter's environment. If nil, a copy of the current
// process's environment is used. In either case, any inherited OLDPWD
// entry is dropped, so that only a successful cd defines it.
func Env(env []string) RunnerOption {
	return func(r *Runner) error {
		if env == nil {
			env = os.Environ()
		}
		r.Env = make([]string, 0, len(env))
		for _, kv := range env {
			if name, _, ok := splitVar(kv); ok && name == "OLDPWD" {
				continue
			}
			r.Env = append(r.Env, kv)
		}
		return nil
	}
}

// Dir sets the interpreter's working directory. If empty, the process's
// current directory is used.
func Dir(path string) RunnerOption {
	return func(r *Runner) error {
		if path == "" {
			path, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get current dir: %w", err)
			}
			r.Dir = path
			return nil
		}
		path, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("could not get absolute dir: %w", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("could not stat: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		r.Dir = path
		return nil
	}
}

// StdIO configures stdin, stdout, and stderr. If out or err are nil, they
// default to a writer that discards the output.
func StdIO(in io.Reader, out, err io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.stdin = in
		if out == nil {
			out = io.Discard
		}
		r.stdout = out
		if err == nil {
			err = io.Discard
		}
		r.stderr = err
		return nil
	}
}

// ExecHandler sets the handler which runs external commands.
func ExecHandler(f ExecHandlerFunc) RunnerOption {
	return func(r *Runner) error {
		r.execHandler = f
		return nil
	}
}

// OpenHandler sets the handler which opens redirect files.
func OpenHandler(f OpenHandlerFunc) RunnerOption {
	return func(r *Runner) error {
		r.openHandler = f
		return nil
	}
}

// ReexecPath sets the binary used to run compound background commands as
// one OS process, via its -c flag. It defaults to the current executable.
func ReexecPath(path string) RunnerOption {
	return func(r *Runner) error {
		r.reexecPath = path
		return nil
	}
}

// Trace makes the interpreter print each command call to w before running
// it, in the manner of "set -x".
func Trace(w io.Writer) RunnerOption {
	return func(r *Runner) error {
		r.tracer = &tracer{out: w}
		return nil
	}
}

// ExitStatus is a non-zero exit status of a command, returned by
// [Runner.Run]. Any error returned by Run which is not an ExitStatus
// is fatal to the shell.
type ExitStatus uint8

func (s ExitStatus) Error() string { return fmt.Sprintf("exit status %d", uint8(s)) }

// NewExitStatus creates an error which contains the given exit status.
func NewExitStatus(status uint8) error { return ExitStatus(status) }

// Run interprets one command tree. A nil error means the command finished
// with a zero exit status; an [ExitStatus] error carries a non-zero one.
// Any other error is fatal: the shell's state can no longer be trusted
// and the caller should exit with failure.
//
// Run can be called again once it returns, but not concurrently.
func (r *Runner) Run(ctx context.Context, cmd syntax.Command) error {
	if !r.usedNew {
		return fmt.Errorf("interp: the Runner must be built via New")
	}
	r.err = nil
	r.exit = 0
	r.exitShell = false
	r.cmd(ctx, cmd)
	if r.err != nil {
		return r.err
	}
	if r.exit != 0 {
		return NewExitStatus(r.exit)
	}
	return nil
}

// Exited reports whether the last Run call should exit the entire shell,
// as triggered by the exit builtin or by a fatal error. This state is
// overwritten at every Run call, so it should be checked immediately
// after each one.
func (r *Runner) Exited() bool { return r.exitShell }

func (r *Runner) outf(format string, a ...interface{}) {
	fmt.Fprintf(r.stdout, format, a...)
}

func (r *Runner) errf(format string, a ...interface{}) {
	fmt.Fprintf(r.stderr, format, a...)
}

// fatal records an error the shell cannot recover from.
func (r *Runner) fatal(err error) {
	if r.err == nil {
		r.err = err
	}
	r.exitShell = true
	if r.exit == 0 {
		r.exit = 1
	}
}

func (r *Runner) setErr(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *Runner) stop(ctx context.Context) bool {
	if r.err != nil || r.exitShell {
		return true
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return true
	}
	return false
}

// sub returns a runner for a nested shell environment: directory and
// environment changes within it do not escape to the parent. The job
// table is process-wide and remains shared.
func (r *Runner) sub() *Runner {
	r2 := &Runner{
		Env:         append([]string(nil), r.Env...),
		Dir:         r.Dir,
		execHandler: r.execHandler,
		openHandler: r.openHandler,
		stdin:       r.stdin,
		stdout:      r.stdout,
		stderr:      r.stderr,
		jobs:        r.jobs,
		reexecPath:  r.reexecPath,
		tracer:      r.tracer,
		usedNew:     true,
	}
	return r2
}

// cmd is the single dispatch point over all command variants. An unknown
// variant is an invariant violation, not a user error.
func (r *Runner) cmd(ctx context.Context, cm syntax.Command) {
	if r.stop(ctx) {
		return
	}
	switch x := cm.(type) {
	case *syntax.ExecCmd:
		if len(x.Args) == 0 {
			r.exit = 0
			return
		}
		fields := make([]string, len(x.Args))
		for i, arg := range x.Args {
			fields[i] = arg.Value
		}
		r.call(ctx, fields)
	case *syntax.RedirCmd:
		r.redir(ctx, x)
	case *syntax.PipeCmd:
		pr, pw := io.Pipe()
		left := r.sub()
		left.stdout = pw
		right := r.sub()
		right.stdin = pr
		var g errgroup.Group
		g.Go(func() error {
			left.cmd(ctx, x.Left)
			return pw.Close()
		})
		right.cmd(ctx, x.Right)
		pr.Close()
		g.Wait()
		r.exit = right.exit
		r.setErr(left.err)
		r.setErr(right.err)
	case *syntax.ListCmd:
		r.cmd(ctx, x.Left)
		r.cmd(ctx, x.Right)
	case *syntax.BackCmd:
		r.background(ctx, x)
	case *syntax.SubshellCmd:
		r2 := r.sub()
		r2.cmd(ctx, x.Cmd)
		r.exit = r2.exit
		r.setErr(r2.err)
	default:
		panic(fmt.Sprintf("unhandled command node: %T", x))
	}
}

// call runs one simple command: a builtin in-process, anything else via
// the exec handler.
func (r *Runner) call(ctx context.Context, args []string) {
	r.tracer.call(args)
	if IsBuiltin(args[0]) {
		r.exit = r.builtin(ctx, args[0], args[1:])
		return
	}
	r.exec(ctx, args)
}

func (r *Runner) exec(ctx context.Context, args []string) {
	err := r.execHandler(r.handlerCtx(ctx), args)
	switch err := err.(type) {
	case nil:
		r.exit = 0
	case ExitStatus:
		r.exit = uint8(err)
	default:
		r.fatal(err)
	}
}

// redir opens the target file in the shell process and swaps the affected
// standard stream for the duration of the child command. Builtins thus run
// redirected without any spawned process, and external commands receive
// the open file directly. The file never outlives the call.
func (r *Runner) redir(ctx context.Context, rd *syntax.RedirCmd) {
	f, err := r.openHandler(r.handlerCtx(ctx), rd.Word.Value, openFlags(rd.Op), 0o700)
	if err != nil {
		if isBuiltinExec(rd.Cmd) {
			// the redirect would have been performed in the shell
			// process itself; failing to set it up is fatal
			r.fatal(err)
			return
		}
		r.errf("%v\n", err)
		r.exit = 1
		return
	}
	oldIn, oldOut := r.stdin, r.stdout
	if rd.Op.TargetFd() == 0 {
		r.stdin = f
	} else {
		r.stdout = f
	}
	r.cmd(ctx, rd.Cmd)
	r.stdin, r.stdout = oldIn, oldOut
	if err := f.Close(); err != nil {
		r.fatal(err)
	}
}

func openFlags(op syntax.RedirOperator) int {
	switch op {
	case syntax.AppOut:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case syntax.RdrOut:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default: // syntax.RdrIn
		return os.O_RDONLY
	}
}

// isBuiltinExec reports whether cmd is a simple command calling a builtin,
// looking through any nested redirects.
func isBuiltinExec(cmd syntax.Command) bool {
	for {
		switch x := cmd.(type) {
		case *syntax.ExecCmd:
			return len(x.Args) > 0 && IsBuiltin(x.Args[0].Value)
		case *syntax.RedirCmd:
			cmd = x.Cmd
		default:
			return false
		}
	}
}

// background starts the child as one OS process and returns without
// waiting. A plain external command is spawned directly; a builtin or a
// compound command is re-executed as "simplesh -c <src>" so that the job
// still has a single PID to record, list and signal. A reaper goroutine
// waits for the process, clears its table slot and prints the
// termination notice.
func (r *Runner) background(ctx context.Context, x *syntax.BackCmd) {
	cmd, missing := r.backgroundCmd(x.Cmd)
	if missing != "" {
		r.errf("no se encontró el comando '%s'\n", missing)
		r.exit = 127
		return
	}
	if err := cmd.Start(); err != nil {
		r.fatal(err)
		return
	}
	pid := cmd.Process.Pid
	r.jobs.insert(pid)
	r.outf("[%d]\n", pid)
	go r.reap(pid, cmd)
}

func (r *Runner) backgroundCmd(child syntax.Command) (cmd *exec.Cmd, missing string) {
	if x, ok := child.(*syntax.ExecCmd); ok && len(x.Args) > 0 && !IsBuiltin(x.Args[0].Value) {
		args := make([]string, len(x.Args))
		for i, arg := range x.Args {
			args[i] = arg.Value
		}
		path, err := LookPathDir(r.Dir, r.Env, args[0])
		if err != nil {
			return nil, args[0]
		}
		cmd = &exec.Cmd{Path: path, Args: args}
	} else {
		src := syntax.NewPrinter().String(child)
		cmd = exec.Command(r.reexecPath, "-c", src)
	}
	cmd.Env = r.Env
	cmd.Dir = r.Dir
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd, ""
}

func (r *Runner) handlerCtx(ctx context.Context) context.Context {
	hc := HandlerContext{
		Env:    r.Env,
		Dir:    r.Dir,
		Stdin:  r.stdin,
		Stdout: r.stdout,
		Stderr: r.stderr,
	}
	return context.WithValue(ctx, handlerCtxKey{}, hc)
}

// absPath returns the given path, joined onto the interpreter's working
// directory when relative.
func (r *Runner) absPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.Dir, path)
}
