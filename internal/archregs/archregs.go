// Package archregs provides the architecture-specific pieces of the
// trap handler: the inspected-syscall set (spec.md §3), which argument
// register carries a path name for classification (spec.md §4.4), and
// the symbolic ucontext register mapping each GOARCH-specific file
// documents for cross-reference with internal/forksrv's cgo trampoline,
// which is the actual reader of machine register state.
//
// Only amd64 and 386 are audited (spec.md §1 non-goals); Arch and
// RegisterNames are defined only in this package's amd64 and 386 files,
// and internal/filter uses both, so attempting to build the module for
// any other GOARCH fails at compile time rather than producing a module
// that silently does the wrong thing.
package archregs

import "golang.org/x/sys/unix"

// Inspected is the fixed set of syscalls the generated filter traps,
// per spec.md §3. Every entry has at most five meaningful arguments,
// which is what makes placing the re-entry marker in the sixth argument
// slot (spec.md §9) safe.
var Inspected = []int64{
	unix.SYS_OPEN,
	unix.SYS_OPENAT,
	unix.SYS_STAT,
	unix.SYS_EXECVE,
	unix.SYS_EXECVEAT,
	unix.SYS_FORK,
	unix.SYS_VFORK,
	unix.SYS_CLONE,
}

// Names maps an inspected syscall number back to a human-readable name,
// used for logging and for fsctl's filter disassembly.
var Names = map[int64]string{
	unix.SYS_OPEN:     "open",
	unix.SYS_OPENAT:   "openat",
	unix.SYS_STAT:     "stat",
	unix.SYS_EXECVE:   "execve",
	unix.SYS_EXECVEAT: "execveat",
	unix.SYS_FORK:     "fork",
	unix.SYS_VFORK:    "vfork",
	unix.SYS_CLONE:    "clone",
}

// PathArgIndex reports which of the six syscall argument registers
// (0-indexed) holds the path name the trap handler must resolve via
// internal/fileid, per spec.md §4.4's classification table. The second
// return value is false for syscalls that take no path argument.
func PathArgIndex(sysno int64) (idx int, ok bool) {
	switch sysno {
	case unix.SYS_OPEN, unix.SYS_STAT:
		return 0, true
	case unix.SYS_OPENAT:
		return 1, true
	}
	return 0, false
}

// IsExecFamily reports whether sysno is execve or execveat.
func IsExecFamily(sysno int64) bool {
	return sysno == unix.SYS_EXECVE || sysno == unix.SYS_EXECVEAT
}

// IsCloneFamily reports whether sysno is fork, vfork, or clone.
func IsCloneFamily(sysno int64) bool {
	return sysno == unix.SYS_FORK || sysno == unix.SYS_VFORK || sysno == unix.SYS_CLONE
}
