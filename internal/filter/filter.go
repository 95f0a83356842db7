// Package filter builds the seccomp-BPF program that traps the
// inspected syscall set while allowing everything else, including the
// module's own re-entrant syscalls (spec.md §4.2).
//
// The program is a two-stage decision procedure, adapted from the BPF
// assembly conventions in the teacher's linux/seccomp.go
// (bpfStmt/bpfJump, the sock_filter/sock_fprog layout) but restructured
// around the original forkserver-preload.c's create_filter(): first a
// re-entry test against the sixth syscall argument, then a linear
// compare-and-branch over the inspected syscall numbers.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/archregs"
	"forkserver-go/internal/errors"
	"forkserver-go/internal/reentry"
)

// BPF instruction classes and operators (spec.md §4.2), named after the
// <linux/filter.h> macros the teacher's seccomp.go also reproduces.
const (
	bpfLD  = 0x00
	bpfJMP = 0x05
	bpfRET = 0x06
	bpfW   = 0x00
	bpfABS = 0x20
	bpfJEQ = 0x10
	bpfK   = 0x00
)

// seccomp_data field offsets: nr is the first 4-byte word; args[5] (the
// sixth syscall argument, where internal/reentry places Marker) starts
// at 16 + 5*8 per the struct seccomp_data layout in <linux/seccomp.h>.
const (
	offsetNR     = 0
	offsetArg5Lo = 16 + 5*8
)

// SECCOMP_RET_* actions this module ever returns (spec.md §4.2): every
// inspected syscall traps into the handler, everything else is allowed
// outright. The module never uses KILL, ERRNO, TRACE, or LOG actions.
const (
	SeccompRetTrap  = 0x00030000
	SeccompRetAllow = 0x7fff0000
)

// prctl(2) arguments used to install the built program (spec.md §4.3),
// named after the same constants the teacher's linux/seccomp.go defines.
const (
	PrSetSeccomp      = 22
	SeccompModeFilter = 2
)

// MaxInstructions bounds how large the generated program may grow,
// mirroring forkserver-preload.c's MAX_BPF_OPS. The fixed inspected set
// (internal/archregs.Inspected) never comes close to it; this exists so
// a future larger inspected set fails loudly at build time instead of
// silently overflowing a kernel-enforced BPF program limit.
const MaxInstructions = 128

// Build constructs the seccomp-BPF program that traps every syscall
// number in inspected and allows everything else, including any
// syscall this module issues itself via internal/reentry (the
// "re-entry test" is always the first two instructions).
func Build(inspected []int64) (unix.SockFprog, error) {
	prog := assemble(inspected)
	if len(prog) > MaxInstructions {
		return unix.SockFprog{}, errors.New(errors.ErrFilter, "build",
			fmt.Sprintf("filter has %d instructions, exceeds MaxInstructions=%d", len(prog), MaxInstructions))
	}
	return unix.SockFprog{
		Len:    uint16(len(prog)),
		Filter: &prog[0],
	}, nil
}

// assemble lays out the BPF program as a slice of instructions, in the
// same two-pass style as create_filter(): first reserve the
// placeholder slots whose jump targets depend on the final layout,
// then fill them in once every index is known.
func assemble(inspected []int64) []unix.SockFilter {
	prog := make([]unix.SockFilter, 0, 4+len(inspected))

	// Load args[5] (low 32 bits) and reserve the re-entry test slot.
	prog = append(prog, bpfStmt(bpfLD|bpfW|bpfABS, offsetArg5Lo))
	reentryTestIdx := len(prog)
	prog = append(prog, unix.SockFilter{}) // filled below

	// Load the syscall number.
	prog = append(prog, bpfStmt(bpfLD|bpfW|bpfABS, offsetNR))

	// Reserve one jump slot per inspected syscall.
	jumpsStart := len(prog)
	prog = append(prog, make([]unix.SockFilter, len(inspected))...)

	allowExitIdx := len(prog)
	prog = append(prog, bpfStmt(bpfRET|bpfK, SeccompRetAllow))
	trapExitIdx := len(prog)
	prog = append(prog, bpfStmt(bpfRET|bpfK, SeccompRetTrap))

	// A re-entrant syscall (marker present) skips straight to ALLOW.
	prog[reentryTestIdx] = bpfJump(bpfJMP|bpfJEQ|bpfK, uint32(reentry.Marker),
		jt(allowExitIdx, reentryTestIdx), 0)

	// Any inspected syscall number jumps to TRAP; a number matching none
	// of them falls through to ALLOW.
	for i, sysno := range inspected {
		idx := jumpsStart + i
		prog[idx] = bpfJump(bpfJMP|bpfJEQ|bpfK, uint32(sysno),
			jt(trapExitIdx, idx), 0)
	}

	return prog
}

// jt computes a relative jump-true offset from instruction from to
// instruction target, the same arithmetic create_filter() uses
// (target - (from + 1)).
func jt(target, from int) uint8 {
	return uint8(target - (from + 1))
}

func bpfStmt(code uint16, k uint32) unix.SockFilter {
	return unix.SockFilter{Code: code, Jt: 0, Jf: 0, K: k}
}

func bpfJump(code uint16, k uint32, jtv, jf uint8) unix.SockFilter {
	return unix.SockFilter{Code: code, Jt: jtv, Jf: jf, K: k}
}

// Disassemble renders the program Build(inspected) would install as
// human-readable text, for the fsctl filter subcommand (spec.md §6).
func Disassemble(inspected []int64) string {
	prog := assemble(inspected)
	var b strings.Builder
	fmt.Fprintf(&b, "seccomp-bpf program (%d instructions, arch=%s)\n", len(prog), archregs.Arch)
	fmt.Fprintf(&b, "trap handler reads: nr=%s args=%v ret=%s\n",
		archregs.RegisterNames.SyscallNumber, archregs.RegisterNames.Args[:5], archregs.RegisterNames.Return)
	for i, ins := range prog {
		fmt.Fprintf(&b, "%3d: %s\n", i, describe(ins))
	}
	return b.String()
}

func describe(ins unix.SockFilter) string {
	switch {
	case ins.Code == bpfLD|bpfW|bpfABS:
		return fmt.Sprintf("LD   abs[%d]", ins.K)
	case ins.Code == bpfJMP|bpfJEQ|bpfK:
		if name, ok := archregs.Names[int64(ins.K)]; ok {
			return fmt.Sprintf("JEQ  #%d (%s), jt=+%d, jf=+%d", ins.K, name, ins.Jt, ins.Jf)
		}
		return fmt.Sprintf("JEQ  0x%x, jt=+%d, jf=+%d", ins.K, ins.Jt, ins.Jf)
	case ins.Code == bpfRET|bpfK && ins.K == SeccompRetAllow:
		return "RET  ALLOW"
	case ins.Code == bpfRET|bpfK && ins.K == SeccompRetTrap:
		return "RET  TRAP"
	default:
		return fmt.Sprintf("?    code=0x%x k=0x%x jt=%d jf=%d", ins.Code, ins.K, ins.Jt, ins.Jf)
	}
}
