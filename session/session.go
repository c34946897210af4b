// Package session opens a login-equivalent platform session for an
// account. Opening the session is what triggers provisioning hooks that
// only run at login time, most importantly home directory creation through
// pam_mkhomedir. The bootstrapper performs no authentication of its own,
// it assumes that already happened (e.g. through an SSH key).
package session

import (
	"errors"

	"github.com/A2-ai/polyjuice/identity"
	"github.com/A2-ai/polyjuice/privilege"
)

// DefaultService is the PAM service configuration used when none is
// configured.
const DefaultService = "login"

// transaction is the slice of a platform session transaction the
// bootstrapper needs. The production implementation is PAM-backed and
// lives in session_linux.go.
type transaction interface {
	validateAccount() error
	openSession() error
	closeSession() error
	environ() map[string]string
	end() error
}

// Bootstrapper validates accounts and opens sessions for them.
type Bootstrapper struct {
	priv    privilege.Token
	service string
	start   func(service, username string) (transaction, error)
}

// New creates a Bootstrapper using the given PAM service name (empty
// selects DefaultService).
func New(priv privilege.Token, service string) *Bootstrapper {
	if service == "" {
		service = DefaultService
	}

	return &Bootstrapper{
		priv:    priv,
		service: service,
		start:   startTransaction,
	}
}

// Bootstrap validates the account and opens a session for it. The three
// steps run in order and each aborts the bootstrap: context creation,
// account management (enabled, not expired, not locked), session open.
// The caller must Close the returned Session before the process exits.
func (b *Bootstrapper) Bootstrap(id identity.Identity) (*Session, error) {
	if !b.priv.Elevated() {
		return nil, privilege.ErrInsufficient
	}

	tx, err := b.start(b.service, id.Username)
	if err != nil {
		return nil, &ContextInitError{Service: b.service, Err: err}
	}

	if err := tx.validateAccount(); err != nil {
		return nil, &AccountInvalidError{Username: id.Username, Err: errors.Join(err, tx.end())}
	}

	if err := tx.openSession(); err != nil {
		return nil, &SessionOpenError{Username: id.Username, Err: errors.Join(err, tx.end())}
	}

	return &Session{tx: tx, env: tx.environ()}, nil
}

// Session is an open platform session. It holds platform state and must be
// closed exactly once; it is never reused across runs.
type Session struct {
	tx     transaction
	env    map[string]string
	closed bool
}

// Environ returns a copy of the environment the session layer exported
// while the session was opened.
func (s *Session) Environ() map[string]string {
	out := make(map[string]string, len(s.env))
	for k, v := range s.env {
		out[k] = v
	}
	return out
}

// Close releases the session and its context. Calling Close again is a
// no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.tx.closeSession()
	if endErr := s.tx.end(); err == nil {
		err = endErr
	}
	return err
}
