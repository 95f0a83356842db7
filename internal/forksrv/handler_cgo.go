//go:build amd64 || 386

package forksrv

/*
#define _GNU_SOURCE
#include <signal.h>
#include <string.h>
#include <sys/prctl.h>
#include <ucontext.h>

extern void goHandleSigsys(long sysno, long a1, long a2, long a3, long a4, long a5, long *ret);

static void forksrvSigsysTrampoline(int sig, siginfo_t *si, void *uctxVoid) {
    ucontext_t *ctx = (ucontext_t *)uctxVoid;
    greg_t *gregs = ctx->uc_mcontext.gregs;

#if defined(__x86_64__)
    long sysno = (long)gregs[REG_RAX];
    long a1 = (long)gregs[REG_RDI];
    long a2 = (long)gregs[REG_RSI];
    long a3 = (long)gregs[REG_RDX];
    long a4 = (long)gregs[REG_R10];
    long a5 = (long)gregs[REG_R8];
    long ret = 0;
    goHandleSigsys(sysno, a1, a2, a3, a4, a5, &ret);
    gregs[REG_RAX] = (greg_t)ret;
#elif defined(__i386__)
    long sysno = (long)gregs[REG_EAX];
    long a1 = (long)gregs[REG_EBX];
    long a2 = (long)gregs[REG_ECX];
    long a3 = (long)gregs[REG_EDX];
    long a4 = (long)gregs[REG_ESI];
    long a5 = (long)gregs[REG_EDI];
    long ret = 0;
    goHandleSigsys(sysno, a1, a2, a3, a4, a5, &ret);
    gregs[REG_EAX] = (greg_t)ret;
#endif
}

static int forksrvInstallSigaction(void) {
    struct sigaction sa;
    memset(&sa, 0, sizeof(sa));
    sa.sa_sigaction = forksrvSigsysTrampoline;
    sa.sa_flags = SA_SIGINFO | SA_NODEFER;
    return sigaction(SIGSYS, &sa, NULL);
}

static int forksrvSetNoNewPrivs(void) {
    return prctl(PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0);
}
*/
import "C"

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/archregs"
	"forkserver-go/internal/errors"
	"forkserver-go/internal/fileid"
	"forkserver-go/internal/reentry"
)

// inputs is set once by Install before the interceptor is armed; the
// trap trampoline (running on the signal-handler stack, with no Go
// scheduler context available) reads it without locking because it is
// never mutated again afterward.
var inputs *fileid.Registry

// installSigsysHandler arms the SIGSYS handler this module needs to
// read raw machine registers out of a ucontext_t, which is not
// reachable through signal.Notify: Go's runtime signal multiplexer
// never exposes raw register state to Go-level handlers, so this one
// piece genuinely requires cgo (spec.md §4.3, §9).
func installSigsysHandler() error {
	if rc := C.forksrvInstallSigaction(); rc != 0 {
		return errors.ErrSigactionFailed
	}
	return nil
}

// setNoNewPrivs calls prctl(PR_SET_NO_NEW_PRIVS), required before a
// seccomp filter may be installed without CAP_SYS_ADMIN.
func setNoNewPrivs() error {
	if rc := C.forksrvSetNoNewPrivs(); rc != 0 {
		return errors.ErrNoNewPrivsFailed
	}
	return nil
}

//export goHandleSigsys
func goHandleSigsys(sysno, a1, a2, a3, a4, a5 C.long, ret *C.long) {
	*ret = C.long(handleTrap(int64(sysno), uintptr(a1), uintptr(a2), uintptr(a3), uintptr(a4), uintptr(a5)))
}

// handleTrap is the Go-side continuation of the SIGSYS trampoline: it
// classifies the trapped syscall, takes the matching action, and always
// re-issues the syscall with the re-entry marker set so the original
// call completes exactly as the host intended (handle_sigsys()'s final
// statement in forkserver-preload.c).
func handleTrap(sysno int64, a1, a2, a3, a4, a5 uintptr) uintptr {
	idx, hasPath := archregs.PathArgIndex(sysno)
	var path string
	if hasPath {
		path = goStringFromArg([5]uintptr{a1, a2, a3, a4, a5}[idx])
	}

	switch classify(sysno, path, hasPath, inputs) {
	case actionAbort:
		if archregs.IsExecFamily(sysno) {
			fatal(errors.ErrExecAttempted)
		} else {
			fatal(errors.ErrCloneAttempted)
		}
	case actionStartServer:
		if hasPath {
			logTrigger(sysno, path)
		}
		Start()
	case actionAllow:
		// fall through to re-executing the syscall below
	}

	ret, errno := reentry.Syscall6(uintptr(sysno), a1, a2, a3, a4, a5)
	if errno != 0 {
		// The kernel ABI reports failure as -errno in the return register.
		return uintptr(-int(errno))
	}
	return ret
}

// goStringFromArg reads a NUL-terminated C string out of a raw register
// value, used to resolve the path argument of open/openat/stat without
// going through cgo.GoString (which assumes a *C.char rather than a
// bare uintptr straight from ucontext_t).
func goStringFromArg(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	return unix.BytePtrToString((*byte)(unsafe.Pointer(addr)))
}
