//go:build amd64

package archregs

// RegisterNames documents the ucontext_t gregs slots internal/forksrv's
// cgo trampoline reads/writes for this architecture, matching the
// REG_RAX/REG_RDI/... macros of the original forkserver-preload.c.
// Args lists all six argument registers; the trampoline reads only the
// first five, since the sixth is where the re-entry marker goes.
// It exists so fsctl can report which registers a build will actually
// read without requiring a live trap, and so handler_cgo.go's C
// preamble has a single Go-visible source of truth to stay in sync with.
var RegisterNames = struct {
	SyscallNumber string
	Args          [6]string
	Return        string
}{
	SyscallNumber: "REG_RAX",
	Args:          [6]string{"REG_RDI", "REG_RSI", "REG_RDX", "REG_R10", "REG_R8", "REG_R9"},
	Return:        "REG_RAX",
}

// Arch is the human-readable name of the audited architecture this
// build targets.
const Arch = "amd64"
