package forksrv

import (
	"os"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/errors"
	"forkserver-go/internal/reentry"
)

// started latches so a re-entrant trap (one that fires while the server
// is already running, or during the brief window before the re-entry
// marker takes effect) never spawns a second command loop, matching
// start_forkserver()'s static started flag.
var started bool

// timeout is the per-child CPU-time limit armed by Start, set once by
// the caller before the first trap can occur.
var timeout int

// SetTimeout records the CPU-time limit every forked child will be
// armed with. It must be called before the interceptor is installed.
func SetTimeout(seconds int) {
	timeout = seconds
}

// Start enters the fork-server command loop (spec.md §4.5). If the
// server has already started (a re-entrant call, or any call in a
// forked child, which inherits the latch) it returns at once and does
// nothing. Otherwise it returns only in a freshly forked child,
// immediately after that child's resource limits and alarm have been
// armed; the parent never returns and loops forever.
func Start() {
	if started {
		return
	}
	started = true

	writeRaw(unix.Stderr, "Initializing fork server...\n")
	writeReply("INIT")

	for {
		var cmd [1]byte
		n, err := unix.Read(unix.Stdin, cmd[:])
		if err != nil || n != 1 {
			fatal(errors.ErrStdinClosed)
		}

		pid, errno := reentry.Fork()
		if errno != 0 {
			fatal(errors.WrapWithDetail(errors.ErrForkFailed, errors.ErrProtocol, "fork", errno.Error()))
		}
		if pid == 0 {
			armChild(timeout)
			return
		}

		exitCode, err := waitForChild(int(pid))
		if err != nil {
			fatal(errors.Wrap(err, errors.ErrProtocol, "wait-child"))
		}
		writeReplyInt(exitCode)
	}
}

// armChild sets the child's CPU-time limit and installs a wall-clock
// watchdog that aborts the process once the same number of seconds of
// real time has elapsed, even if the child is blocked and uses no CPU,
// mirroring start_forkserver()'s rlimit + SIGALRM + alarm() sequence.
//
// The watchdog itself is installed by armWatchdog (handler_cgo.go's
// companion, watchdog_cgo.go), not by os/signal: this goroutine runs in
// a process that came from a raw reentry.Fork() with live Go runtime
// threads (sysmon, GC workers, ...) stopped mid-stride, since a bare
// fork() without an immediate exec() only carries the calling thread
// into the child. signal.Notify needs to register with the runtime's
// signal-handling machinery, which can be holding a lock a
// now-nonexistent thread never released — a classic fork-without-exec
// hazard in a threaded Go program, and fatal here since the fork server
// loop is strictly sequential and the parent is blocked in
// waitForChild on this exact pid. armWatchdog instead arms a plain libc
// signal()/alarm(), whose handler calls abort() directly: async-signal-safe,
// no Go scheduler involvement at all.
func armChild(seconds int) {
	rlim := unix.Rlimit{Cur: uint64(seconds), Max: uint64(seconds)}
	if err := unix.Setrlimit(unix.RLIMIT_CPU, &rlim); err != nil {
		fatal(errors.WrapWithDetail(err, errors.ErrProtocol, "setrlimit", "RLIMIT_CPU"))
	}

	armWatchdog(seconds)
}

// waitForChild reaps pid and computes the exit code the controller
// sees: the raw exit status if the child exited, or the raw signal
// number if it was killed by a signal, matching start_forkserver()'s
// WIFEXITED/WEXITSTATUS/WIFSIGNALED/WTERMSIG handling exactly (no
// 128+signal offset).
func waitForChild(pid int) (int, error) {
	var status unix.WaitStatus
	_, err := unix.Wait4(pid, &status, 0, nil)
	if err != nil {
		return 0, errors.WrapWithDetail(errors.ErrWaitFailed, errors.ErrProtocol, "wait4", err.Error())
	}
	return exitCodeFromStatus(status)
}

func exitCodeFromStatus(status unix.WaitStatus) (int, error) {
	switch {
	case status.Exited():
		return status.ExitStatus(), nil
	case status.Signaled():
		return int(status.Signal()), nil
	default:
		return 0, errors.ErrUnknownWaitStatus
	}
}

// fatal terminates the process the way the original signal handler's
// abort() does: abruptly, with no further cleanup. It is only called
// from contexts where recovery is not meaningful — the protocol has
// already been violated.
func fatal(err error) {
	writeRaw(unix.Stderr, err.Error()+"\n")
	os.Exit(1)
}
