package userenv

import (
	"fmt"
	"strings"
)

// HelperUnavailableError means the switch-user helper could not be
// launched at all (binary missing, permission denied, ...).
type HelperUnavailableError struct {
	Helper string
	Err    error
}

func (e *HelperUnavailableError) Error() string {
	return fmt.Sprintf("unable to launch helper %q: %s", e.Helper, e.Err)
}

func (e *HelperUnavailableError) Unwrap() error { return e.Err }

// HelperFailedError means the helper ran but exited non-zero. Stderr holds
// its captured standard error verbatim for diagnostics.
type HelperFailedError struct {
	Helper   string
	ExitCode int
	Stderr   []byte
}

func (e *HelperFailedError) Error() string {
	return fmt.Sprintf("helper %q exited with code %d: %s",
		e.Helper, e.ExitCode, strings.TrimSpace(string(e.Stderr)))
}
