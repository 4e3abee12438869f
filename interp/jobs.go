// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// maxJobs is the capacity of the background job table. Starting more
// background commands than this still works, but the extra processes are
// not recorded, so bjobs can neither list nor signal them.
const maxJobs = 8

// jobTable records the PIDs of live background commands. Empty slots hold
// -1. It is mutated in two places: the evaluator inserts on spawn, and a
// reaper goroutine clears the slot when the process terminates; the mutex
// keeps those two apart, the way the original's signal mask kept the
// SIGCHLD handler away from the evaluator.
type jobTable struct {
	mu   sync.Mutex
	pids [maxJobs]int
}

func newJobTable() *jobTable {
	t := &jobTable{}
	for i := range t.pids {
		t.pids[i] = -1
	}
	return t
}

func (t *jobTable) insert(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.pids {
		if p == -1 {
			t.pids[i] = pid
			return
		}
	}
	// table full: the process still runs, but is unreachable via bjobs
}

func (t *jobTable) remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.pids {
		if p == pid {
			t.pids[i] = -1
		}
	}
}

// live returns the recorded PIDs in slot order.
func (t *jobTable) live() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	var pids []int
	for _, p := range t.pids {
		if p != -1 {
			pids = append(pids, p)
		}
	}
	return pids
}

// signalAll sends sig to every recorded process. A process that died
// between listing and signalling is skipped; any other delivery failure
// is returned.
func (t *jobTable) signalAll(sig os.Signal) error {
	for _, pid := range t.live() {
		if err := kill(pid, sig); err != nil && !processGone(err) {
			return fmt.Errorf("kill pid %d: %w", pid, err)
		}
	}
	return nil
}

// reap waits for a background process, clears its table slot, and writes
// the termination notice. The notice is a single Write of a preformatted
// buffer, so it cannot interleave mid-line with foreground output.
func (r *Runner) reap(pid int, cmd *exec.Cmd) {
	cmd.Wait()
	r.jobs.remove(pid)
	r.stdout.Write([]byte(fmt.Sprintf("[%d]\n", pid)))
}
