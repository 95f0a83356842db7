package forksrv

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/archregs"
	"forkserver-go/internal/config"
	"forkserver-go/internal/errors"
	"forkserver-go/internal/filter"
)

// Install reads the module's environment configuration, installs the
// SIGSYS trampoline, sets no_new_privs, builds the seccomp-BPF filter,
// and finally locks the process into the filter, in that order. It is
// the Go equivalent
// of forkserver-preload.c's constructor function constr(): everything
// after a successful Install call runs under the interceptor, so any
// inspected syscall from this point on is handled by handleTrap.
func Install() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	inputs = &cfg.Inputs
	SetTimeout(cfg.Timeout)

	if err := installSigsysHandler(); err != nil {
		return err
	}
	if err := setNoNewPrivs(); err != nil {
		return err
	}

	prog, err := filter.Build(archregs.Inspected)
	if err != nil {
		return err
	}
	if err := installFilter(&prog); err != nil {
		return err
	}

	return nil
}

// installFilter locks the process to prog via
// prctl(PR_SET_SECCOMP, SECCOMP_MODE_FILTER, ...). The original source
// installs its filter with the seccomp(2) syscall directly
// (SECCOMP_SET_MODE_FILTER); prctl installs the same filter mode and is
// used here instead because it is the older, more broadly supported
// entry point (seccomp(2) itself only exists since Linux 3.17), and
// needs no extra flag handling for this module's purposes.
func installFilter(prog *unix.SockFprog) error {
	_, _, errno := unix.Syscall(unix.SYS_PRCTL,
		uintptr(filter.PrSetSeccomp),
		uintptr(filter.SeccompModeFilter),
		uintptr(unsafe.Pointer(prog)))
	if errno != 0 {
		return errors.WrapWithDetail(errors.ErrSeccompInstallFailed, errors.ErrInterceptor, "prctl", errno.Error())
	}
	return nil
}
