// Package reentry provides the re-entry marker and the raw syscall
// helpers that place it, so that a syscall issued by this module's own
// code bypasses the installed filter instead of trapping into itself.
//
// See spec.md §3 ("Re-entry marker") and §4.2 (the filter's re-entry
// test). The marker is an arbitrary 32-bit constant agreed between the
// filter program (internal/filter) and every direct syscall invocation
// the module makes (internal/fileid's stat, internal/forksrv's fork and
// trap-handler re-execution).
package reentry

import (
	"golang.org/x/sys/unix"
)

// Marker is placed in the sixth argument of any syscall this module
// issues directly, so the installed filter's re-entry test allows it
// through without trapping. Any fixed value works as long as the filter
// and the handler agree; this one matches the original forkserver-preload.c.
const Marker uint64 = 0x12345678

// Syscall6 issues the raw syscall nr with the first five arguments given
// and Marker as the sixth, bypassing the filter's inspected-syscall trap.
// It is the only sanctioned way for this module to invoke an inspected
// syscall (stat, open, openat, fork, vfork, clone) on its own behalf.
func Syscall6(nr, a1, a2, a3, a4, a5 uintptr) (ret uintptr, errno unix.Errno) {
	r1, _, e := unix.Syscall6(nr, a1, a2, a3, a4, a5, uintptr(Marker))
	return r1, e
}

// Fork re-enters SYS_FORK with the marker set, so the fork-server's own
// forking is never mistaken by the filter for a host-initiated
// clone-family syscall (spec.md §4.5, step 2). golang.org/x/sys/unix
// resolves SYS_FORK to the right number for the current GOARCH; only
// amd64 and 386 are audited (spec.md non-goals), enforced at compile
// time by internal/archregs's GOARCH-gated files.
func Fork() (pid uintptr, errno unix.Errno) {
	return Syscall6(uintptr(unix.SYS_FORK), 0, 0, 0, 0, 0)
}
