// Package errors provides predefined sentinel errors for common failure cases.
package errors

// Configuration errors.
var (
	// ErrMissingTimeout indicates __SCM_TIMEOUT was not set.
	ErrMissingTimeout = &ModuleError{
		Kind:   ErrConfig,
		Detail: "__SCM_TIMEOUT not set",
	}

	// ErrNoInputs indicates not even __SCM_INPUT_0 was set.
	ErrNoInputs = &ModuleError{
		Kind:   ErrConfig,
		Detail: "no __SCM_INPUT_<k> entries set",
	}

	// ErrTooManyInputs indicates more than fileid.MaxInputs entries were found.
	ErrTooManyInputs = &ModuleError{
		Kind:   ErrConfig,
		Detail: "too many __SCM_INPUT_<k> entries",
	}
)

// File identity errors.
var (
	// ErrUnresolvableInput indicates a required input file could not be stat'd.
	ErrUnresolvableInput = &ModuleError{
		Kind:   ErrFileID,
		Detail: "input file could not be resolved",
	}

	// ErrRegistryFull indicates the input registry has reached its capacity.
	ErrRegistryFull = &ModuleError{
		Kind:   ErrFileID,
		Detail: "input registry is full",
	}
)

// Filter errors.
var (
	// ErrFilterTooLarge indicates the generated BPF program exceeds the instruction ceiling.
	ErrFilterTooLarge = &ModuleError{
		Kind:   ErrFilter,
		Detail: "filter program exceeds instruction ceiling",
	}

	// ErrUnauditedArch indicates the build target is not a supported architecture.
	ErrUnauditedArch = &ModuleError{
		Kind:   ErrFilter,
		Detail: "unaudited architecture",
	}
)

// Interceptor errors.
var (
	// ErrSigactionFailed indicates installing the SIGSYS handler failed.
	ErrSigactionFailed = &ModuleError{
		Kind:   ErrInterceptor,
		Detail: "failed to install SIGSYS handler",
	}

	// ErrNoNewPrivsFailed indicates prctl(PR_SET_NO_NEW_PRIVS) failed.
	ErrNoNewPrivsFailed = &ModuleError{
		Kind:   ErrInterceptor,
		Detail: "failed to set no_new_privs",
	}

	// ErrSeccompInstallFailed indicates prctl(PR_SET_SECCOMP) failed.
	ErrSeccompInstallFailed = &ModuleError{
		Kind:   ErrInterceptor,
		Detail: "failed to install seccomp filter",
	}
)

// Protocol / fork-server errors.
var (
	// ErrStdinClosed indicates the command channel was closed or errored.
	ErrStdinClosed = &ModuleError{
		Kind:   ErrProtocol,
		Detail: "stdin command channel closed",
	}

	// ErrWaitFailed indicates wait4() on a forked child failed.
	ErrWaitFailed = &ModuleError{
		Kind:   ErrProtocol,
		Detail: "wait4 failed",
	}

	// ErrForkFailed indicates the re-entrant fork syscall failed.
	ErrForkFailed = &ModuleError{
		Kind:   ErrProtocol,
		Detail: "fork failed",
	}

	// ErrUnknownWaitStatus indicates a wait status that is neither exited nor signaled.
	ErrUnknownWaitStatus = &ModuleError{
		Kind:   ErrProtocol,
		Detail: "unknown wait status",
	}
)

// Runtime-violation errors (fatal, by design — see spec.md §7).
var (
	// ErrExecAttempted indicates the host attempted execve/execveat.
	ErrExecAttempted = &ModuleError{
		Kind:   ErrInternal,
		Detail: "host attempted exec, which cannot be replayed in a fork-server child",
	}

	// ErrCloneAttempted indicates the host attempted fork/vfork/clone.
	ErrCloneAttempted = &ModuleError{
		Kind:   ErrInternal,
		Detail: "host attempted to spawn a thread or subprocess, which breaks the fork-server model",
	}
)
