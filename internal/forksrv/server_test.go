package forksrv

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestExitCodeFromStatus_Exited(t *testing.T) {
	// Linux wait status encoding: exit code in the high byte, low byte zero.
	status := unix.WaitStatus(7 << 8)
	code, err := exitCodeFromStatus(status)
	if err != nil {
		t.Fatalf("exitCodeFromStatus: %v", err)
	}
	if code != 7 {
		t.Errorf("code = %d, want 7", code)
	}
}

func TestExitCodeFromStatus_Signaled(t *testing.T) {
	// Killed by SIGKILL (9): low 7 bits carry the signal number, no core-dump bit.
	status := unix.WaitStatus(9)
	code, err := exitCodeFromStatus(status)
	if err != nil {
		t.Fatalf("exitCodeFromStatus: %v", err)
	}
	if code != 9 {
		t.Errorf("code = %d, want 9 (raw signal number, not 128+signal)", code)
	}
}

func TestExitCodeFromStatus_NormalExitIsZero(t *testing.T) {
	status := unix.WaitStatus(0)
	code, err := exitCodeFromStatus(status)
	if err != nil {
		t.Fatalf("exitCodeFromStatus: %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}
