// Package config reads the module's environment-variable configuration:
// the per-child CPU timeout and the list of registered input files
// (spec.md §6), mirroring the original forkserver-preload.c's
// constr()/initialize_inputs() constructor logic.
package config

import (
	"fmt"
	"os"
	"strconv"

	"forkserver-go/internal/errors"
	"forkserver-go/internal/fileid"
)

// TimeoutEnv is the environment variable carrying the per-child CPU
// time limit, in seconds.
const TimeoutEnv = "__SCM_TIMEOUT"

// InputEnvPrefix is the prefix of the numbered input-path environment
// variables (__SCM_INPUT_0, __SCM_INPUT_1, ...).
const InputEnvPrefix = "__SCM_INPUT_"

// Config is the module's parsed environment configuration.
type Config struct {
	// Timeout is the CPU-time limit, in seconds, armed on every forked
	// child (spec.md §4.5).
	Timeout int
	// Inputs is the set of file identities recognized as registered
	// inputs, by (device, inode).
	Inputs fileid.Registry
}

// Load reads TimeoutEnv and the InputEnvPrefix-numbered input paths
// from the environment. TimeoutEnv must be set, but its value is parsed
// permissively (spec.md §6): a malformed or out-of-range timeout never
// aborts the load. A value with no leading digits degrades to 0 and a
// negative value is kept as is, matching atoi()'s behavior in
// the original constr()/initialize_inputs() constructor, which never
// fails and proceeds with whatever atoi() returned. Individual input
// paths that fail to resolve are a different matter and do abort
// (they are always required, matching get_file_id(name, 1)).
func Load() (*Config, error) {
	timeoutStr, ok := os.LookupEnv(TimeoutEnv)
	if !ok {
		return nil, errors.ErrMissingTimeout
	}

	cfg := &Config{Timeout: atoi(timeoutStr)}

	for i := 0; i <= fileid.MaxInputs; i++ {
		name := InputEnvPrefix + strconv.Itoa(i)
		path, ok := os.LookupEnv(name)
		if !ok {
			break
		}
		if i == fileid.MaxInputs {
			return nil, errors.ErrTooManyInputs
		}
		if err := cfg.Inputs.Register(path, true); err != nil {
			return nil, errors.WrapWithDetail(err, errors.ErrConfig, "register-input",
				fmt.Sprintf("%s=%q", name, path))
		}
	}

	if cfg.Inputs.Len() == 0 {
		return nil, errors.ErrNoInputs
	}

	return cfg, nil
}

// atoi mimics the permissive behavior of the C standard library's
// atoi(3), which constr() relies on for __SCM_TIMEOUT: skip leading
// whitespace, accept one optional sign, consume leading decimal digits,
// and stop at the first non-digit. Garbage input never panics or
// errors: empty or non-numeric input degrades to 0, and a value too
// large for int wraps around instead of being clamped.
func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\v' || s[i] == '\f' || s[i] == '\r') {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
