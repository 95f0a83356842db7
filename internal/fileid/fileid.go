// Package fileid implements the Input Registry: a bounded table of file
// identities used to recognize, by (device, inode) rather than by
// pathname, when a trapped syscall refers to one of the host's
// registered input files (spec.md §3, §4.1).
package fileid

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/errors"
	"forkserver-go/internal/reentry"
)

// MaxInputs is the fixed capacity of the registry (spec.md §3).
const MaxInputs = 1024

// Identity is the canonical equality key for "does this path refer to a
// registered input?". Pathnames are never compared, so symlinks,
// relative paths, and hardlinks all resolve correctly.
type Identity struct {
	Dev uint64
	Ino uint64
}

// Registry is a bounded, append-only, once-populated set of Identity
// values. The zero value is an empty registry.
type Registry struct {
	ids [MaxInputs]Identity
	n   int
}

// Register resolves path to a file identity via a direct stat syscall
// (bypassing the installed filter through the re-entry marker) and adds
// it to the registry. If required and resolution fails, it returns a
// fatal error (spec.md §4.1: "If required and resolution fails, the
// process aborts" — Register only reports the failure; internal/config
// passes it up through forksrv.Install, and cmd/preload's init is the
// one that exits the process).
func (r *Registry) Register(path string, required bool) error {
	id, err := resolve(path)
	if err != nil {
		if required {
			return errors.Wrap(err, errors.ErrFileID, "register")
		}
		return nil
	}
	if r.n >= MaxInputs {
		return errors.ErrRegistryFull
	}
	r.ids[r.n] = id
	r.n++
	return nil
}

// Contains reports whether path resolves to an identity already present
// in the registry. Resolution failures are not required here; they
// simply make Contains report false. The scan is linear: the registry
// is tiny (at most 1024 entries) and this call is off the host's hot
// path (spec.md §4.1).
func (r *Registry) Contains(path string) bool {
	id, err := resolve(path)
	if err != nil {
		return false
	}
	for i := 0; i < r.n; i++ {
		if r.ids[i] == id {
			return true
		}
	}
	return false
}

// Len returns the number of identities currently registered.
func (r *Registry) Len() int {
	return r.n
}

// resolve stats path via the re-entry marker, so it works identically
// whether or not the filter has been installed yet.
func resolve(path string) (Identity, error) {
	pathPtr, err := unix.BytePtrFromString(path)
	if err != nil {
		return Identity{}, err
	}

	var st unix.Stat_t
	_, errno := reentry.Syscall6(
		uintptr(unix.SYS_STAT),
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&st)),
		0, 0, 0,
	)
	if errno != 0 {
		return Identity{}, errno
	}

	return Identity{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, nil
}
