package forksrv

import (
	"golang.org/x/sys/unix"
)

// toSCMMark prefixes every line the module writes back to the
// controller, so a line-oriented reader can find the reply among
// whatever the driven host also writes to the same descriptors
// (spec.md §6, matching forkserver-preload.c's TO_SCM_MARK).
const toSCMMark = "## FORKSERVER -> SCM ##"

// ReplyMark is toSCMMark exported for controllers (cmd/fsctl) that need
// to recognize framed replies in the driven host's output streams.
const ReplyMark = toSCMMark

// writeRaw writes all of msg to fd with unix.Write directly, retrying
// on short writes. It intentionally bypasses buffered I/O: this runs on
// the signal-handler path (spec.md §4.6), where allocating or blocking
// on a buffered writer's internal lock is not safe.
func writeRaw(fd int, msg string) {
	b := []byte(msg)
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err != nil || n <= 0 {
			return
		}
		b = b[n:]
	}
}

// writeReply frames reply on stdout, prefixed with toSCMMark, and
// writes an empty marker-only line to stderr (the controller's stderr
// reply is always empty; only stdout carries data), matching
// write_reply() in forkserver-preload.c.
func writeReply(reply string) {
	writeRaw(unix.Stdout, toSCMMark)
	writeRaw(unix.Stdout, reply)
	writeRaw(unix.Stdout, "\n")
	writeRaw(unix.Stderr, toSCMMark+"\n")
}

// writeReplyInt frames an integer reply, formatting it by hand into a
// fixed stack buffer instead of going through fmt or strconv.
func writeReplyInt(n int) {
	var buf [20]byte
	i := len(buf)
	u := uint64(n)
	if n < 0 {
		u = -u
	}
	for more := true; more; more = u != 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if n < 0 {
		i--
		buf[i] = '-'
	}
	writeReply(string(buf[i:]))
}
