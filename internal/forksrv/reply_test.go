package forksrv

import (
	"io"
	"os"
	"strings"
	"testing"
)

func TestWriteRaw(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()

	go func() {
		writeRaw(int(w.Fd()), toSCMMark)
		writeRaw(int(w.Fd()), "42")
		writeRaw(int(w.Fd()), "\n")
		w.Close()
	}()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := toSCMMark + "42\n"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteRaw_LongMessageHandlesShortWrites(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()

	long := strings.Repeat("x", 1<<16)
	go func() {
		writeRaw(int(w.Fd()), long)
		w.Close()
	}()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != long {
		t.Errorf("got %d bytes, want %d", len(got), len(long))
	}
}
