// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

//go:build unix

package interp

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

type waitStatus = syscall.WaitStatus

func kill(pid int, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return errors.New("unsupported signal type")
	}
	return unix.Kill(pid, s)
}

func processGone(err error) bool { return errors.Is(err, unix.ESRCH) }

// access reports whether the current user may enter the directory, which
// os.Stat's permission bits alone cannot tell.
func access(path string) error {
	return unix.Access(path, unix.X_OK)
}
