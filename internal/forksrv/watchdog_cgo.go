//go:build amd64 || 386

package forksrv

/*
#include <signal.h>
#include <stdlib.h>
#include <unistd.h>

static void forksrvSigalrmHandler(int sig) {
    abort();
}

static void forksrvArmWatchdog(unsigned int seconds) {
    signal(SIGALRM, forksrvSigalrmHandler);
    alarm(seconds);
}
*/
import "C"

// armWatchdog arms a wall-clock watchdog entirely in libc: signal() installs
// a handler that calls abort() directly, and alarm() schedules it. Both
// are async-signal-safe and need nothing from the Go runtime, unlike
// os/signal + a goroutine, which would require the runtime's
// signal-handling machinery to be in a consistent state — not a safe
// assumption in a child produced by a bare reentry.Fork() (see armChild's
// doc comment in server.go).
func armWatchdog(seconds int) {
	C.forksrvArmWatchdog(C.uint(seconds))
}
