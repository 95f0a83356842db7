//go:build 386

package archregs

// RegisterNames documents the ucontext_t gregs slots internal/forksrv's
// cgo trampoline reads/writes for this architecture, matching the
// REG_EAX/REG_EBX/... macros of the original forkserver-preload.c.
// Args lists all six argument registers; the trampoline reads only the
// first five, since the sixth is where the re-entry marker goes.
var RegisterNames = struct {
	SyscallNumber string
	Args          [6]string
	Return        string
}{
	SyscallNumber: "REG_EAX",
	Args:          [6]string{"REG_EBX", "REG_ECX", "REG_EDX", "REG_ESI", "REG_EDI", "REG_EBP"},
	Return:        "REG_EAX",
}

// Arch is the human-readable name of the audited architecture this
// build targets.
const Arch = "386"
