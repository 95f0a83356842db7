// Package forksrv implements the trap handler and fork-server protocol
// loop: the part of the module that runs once a SIGSYS trap fires for
// an inspected syscall (spec.md §4.4, §4.5), grounded on handle_sigsys()
// and start_forkserver() in forkserver-preload.c.
package forksrv

import (
	"golang.org/x/sys/unix"

	"forkserver-go/internal/archregs"
	"forkserver-go/internal/fileid"
)

// action is the trap handler's classification of a trapped syscall,
// mirroring the branches of handle_sigsys()'s switch statement.
type action int

const (
	// actionAllow means the syscall simply gets re-executed once the
	// marker is set; no side effect on the module's own state.
	actionAllow action = iota
	// actionStartServer means the fork server should be entered (idempotent:
	// only the first call has any effect, per the "started" latch).
	actionStartServer
	// actionAbort means the host attempted something the fork-server model
	// cannot support (exec, or spawning a thread/subprocess) and the
	// process must terminate.
	actionAbort
)

// classify decides what the trap handler does for a trapped syscall
// number, given the path argument already resolved by the caller (when
// the syscall takes one) and the input registry to test it against.
func classify(sysno int64, path string, hasPath bool, inputs *fileid.Registry) action {
	switch {
	case archregs.IsExecFamily(sysno):
		return actionAbort
	case archregs.IsCloneFamily(sysno):
		return actionAbort
	case hasPath:
		if inputs.Contains(path) {
			return actionStartServer
		}
		return actionAllow
	default:
		// Any other inspected syscall reaching the handler starts the
		// server unconditionally, matching handle_sigsys()'s switch
		// default case. With the fixed inspected set (internal/archregs),
		// this branch is unreachable in practice: every inspected
		// syscall is covered by one of the cases above.
		return actionStartServer
	}
}

// logTrigger prints the human-readable trigger message handle_sigsys()
// writes to standard error before entering the fork server. It uses the
// same unbuffered, allocation-light write path as writeReply rather
// than internal/logging, because this still runs on the signal-handler
// stack (internal/logging's package doc explains why it is unsafe here).
func logTrigger(sysno int64, path string) {
	name := archregs.Names[sysno]
	writeRaw(unix.Stderr, name+": opening registered input "+path+", starting fork server\n")
}
