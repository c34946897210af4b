package session

import "fmt"

// ContextInitError means no session context could be created for the
// service / username pair.
type ContextInitError struct {
	Service string
	Err     error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("unable to create session context for service %q: %s", e.Service, e.Err)
}

func (e *ContextInitError) Unwrap() error { return e.Err }

// AccountInvalidError means account validation failed: the account is
// unknown to the session layer, expired or locked.
type AccountInvalidError struct {
	Username string
	Err      error
}

func (e *AccountInvalidError) Error() string {
	return fmt.Sprintf("account %q failed validation: %s", e.Username, e.Err)
}

func (e *AccountInvalidError) Unwrap() error { return e.Err }

// SessionOpenError means the session itself could not be opened.
type SessionOpenError struct {
	Username string
	Err      error
}

func (e *SessionOpenError) Error() string {
	return fmt.Sprintf("unable to open session for %q: %s", e.Username, e.Err)
}

func (e *SessionOpenError) Unwrap() error { return e.Err }
