package forksrv

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"

	"forkserver-go/internal/fileid"
)

func registryWith(t *testing.T, paths ...string) *fileid.Registry {
	t.Helper()
	var r fileid.Registry
	for _, p := range paths {
		if err := r.Register(p, true); err != nil {
			t.Fatalf("Register(%q): %v", p, err)
		}
	}
	return &r
}

func TestClassify_ExecFamilyAborts(t *testing.T) {
	var r fileid.Registry
	for _, sysno := range []int64{unix.SYS_EXECVE, unix.SYS_EXECVEAT} {
		if got := classify(sysno, "", false, &r); got != actionAbort {
			t.Errorf("classify(%d) = %v, want actionAbort", sysno, got)
		}
	}
}

func TestClassify_CloneFamilyAborts(t *testing.T) {
	var r fileid.Registry
	for _, sysno := range []int64{unix.SYS_FORK, unix.SYS_VFORK, unix.SYS_CLONE} {
		if got := classify(sysno, "", false, &r); got != actionAbort {
			t.Errorf("classify(%d) = %v, want actionAbort", sysno, got)
		}
	}
}

func TestClassify_RegisteredInputStartsServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r := registryWith(t, path)

	if got := classify(unix.SYS_OPEN, path, true, r); got != actionStartServer {
		t.Errorf("classify(open, registered) = %v, want actionStartServer", got)
	}
	if got := classify(unix.SYS_STAT, path, true, r); got != actionStartServer {
		t.Errorf("classify(stat, registered) = %v, want actionStartServer", got)
	}
}

func TestClassify_UnregisteredPathAllows(t *testing.T) {
	dir := t.TempDir()
	registered := filepath.Join(dir, "in.txt")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(registered, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(other, []byte("y"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	r := registryWith(t, registered)

	if got := classify(unix.SYS_OPEN, other, true, r); got != actionAllow {
		t.Errorf("classify(open, unregistered) = %v, want actionAllow", got)
	}
}

func TestClassify_NoPathArgStartsServerUnconditionally(t *testing.T) {
	var r fileid.Registry
	// Syscalls with no path argument that nonetheless reach the handler
	// (defensive default case) always start the server.
	if got := classify(9999, "", false, &r); got != actionStartServer {
		t.Errorf("classify(no-path) = %v, want actionStartServer", got)
	}
}
