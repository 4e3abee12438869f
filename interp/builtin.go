// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// IsBuiltin returns true if the given word is a shell builtin.
func IsBuiltin(name string) bool {
	switch name {
	case "cwd", "cd", "exit", "psplit", "bjobs":
		return true
	}
	return false
}

// builtin runs name in the shell process and returns its exit status. The
// diagnostics are the ones users of the original shell know, wording
// included.
func (r *Runner) builtin(ctx context.Context, name string, args []string) uint8 {
	switch name {
	case "cwd":
		r.outf("cwd: %s\n", r.Dir)
	case "exit":
		r.exitShell = true
	case "cd":
		return r.cd(args)
	case "psplit":
		return r.psplit(ctx, args)
	case "bjobs":
		return r.bjobs(args)
	default:
		panic(fmt.Sprintf("unhandled builtin: %s", name))
	}
	return 0
}

// cd changes the interpreter's working directory. OLDPWD is defined iff
// at least one prior cd succeeded; every successful call points it at the
// pre-call directory.
func (r *Runner) cd(args []string) uint8 {
	if len(args) > 1 {
		r.outf("run_cd: Demasiados argumentos\n")
		return 1
	}
	prev := r.Dir
	switch {
	case len(args) == 0:
		home, ok := r.lookupVar("HOME")
		if !ok {
			r.errf("run_cd: HOME not set\n")
			return 1
		}
		if err := r.changeDir(home); err != nil {
			r.errf("run_cd: %v\n", err)
			return 1
		}
	case args[0] == "-":
		old, ok := r.lookupVar("OLDPWD")
		if !ok {
			r.outf("run_cd: Variable OLDPWD no definida\n")
			return 1
		}
		if err := r.changeDir(old); err != nil {
			r.errf("run_cd: %v\n", err)
			return 1
		}
	default:
		if err := r.changeDir(args[0]); err != nil {
			r.outf("run_cd: No existe el directorio '%s'\n", args[0])
			return 1
		}
	}
	r.setVar("OLDPWD", prev)
	return 0
}

func (r *Runner) changeDir(path string) error {
	path = r.absPath(path)
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	if err := access(path); err != nil {
		return fmt.Errorf("permission denied: %s", path)
	}
	// match what getcwd would report after a real chdir
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	r.Dir = path
	return nil
}

// bjobs lists the live background jobs, or signals them with -k. The -k
// flag wins over -h, as it always has.
func (r *Runner) bjobs(args []string) uint8 {
	var kill, help bool
	for _, arg := range args {
		switch arg {
		case "-k":
			kill = true
		case "-h":
			help = true
		default:
			r.errf("bjobs: invalid option -- '%s'\n", arg)
			return 2
		}
	}
	switch {
	case kill:
		if err := r.jobs.signalAll(unix.SIGTERM); err != nil {
			r.fatal(err)
			return 1
		}
	case help:
		r.outf("Uso : bjobs [ -k] [-h]\n")
		r.outf("      Opciones :\n")
		r.outf("      -k Mata todos los procesos en segundo plano.\n")
		r.outf("      -h Ayuda\n")
	default:
		for _, pid := range r.jobs.live() {
			r.outf("[%d]\n", pid)
		}
	}
	return 0
}
