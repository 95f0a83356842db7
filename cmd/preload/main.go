// Command preload is the module's actual deliverable: a c-shared
// library meant to be loaded into a host process via LD_PRELOAD
// (spec.md §1). Go has no direct equivalent of a C
// __attribute__((constructor)) function pinned to a specific source
// file, but -buildmode=c-shared gives the same guarantee at the
// package level: every imported package's init() functions run, via
// the shared object's ELF .init_array, before any //export'ed symbol
// becomes callable. forksrv.Install is wired into that guarantee below
// instead of into a constructor export, which is why this package
// exports a symbol at all — cgo's -buildmode=c-shared refuses to build
// a shared object with no exported symbols.
package main

import "C"

import (
	"fmt"
	"os"

	"forkserver-go/internal/forksrv"
)

func init() {
	if err := forksrv.Install(); err != nil {
		fmt.Fprintf(os.Stderr, "forkserver-go: %v\n", err)
		os.Exit(1)
	}
}

// ForksrvLoaded is exported so the shared object has at least one
// callable symbol; host code never needs to call it. Its only use is
// as a cheap dlsym probe to confirm the library loaded.
//
//export ForksrvLoaded
func ForksrvLoaded() C.int {
	return 1
}

func main() {}
