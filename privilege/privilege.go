// Package privilege models the superuser precondition as an explicit
// capability token. The token is obtained once at process start and passed
// to the components performing privileged operations, which makes the
// requirement visible in their constructors instead of being an ambient
// condition re-checked all over the place.
package privilege

import "errors"

// ErrInsufficient is returned whenever an operation requiring superuser
// rights is attempted without them.
var ErrInsufficient = errors.New("insufficient privilege: effective uid is not root")

// Token proves the process was running with superuser rights when the
// token was obtained. The zero value is not elevated.
type Token struct {
	elevated bool
}

// Require checks the effective uid of the current process and returns a
// usable Token when it is root. Call it once at startup and hand the token
// to the components that need it.
func Require() (Token, error) {
	if !isRoot() {
		return Token{}, ErrInsufficient
	}
	return Token{elevated: true}, nil
}

// Unchecked returns an elevated Token without consulting the operating
// system. Intended for tests.
func Unchecked() Token { return Token{elevated: true} }

// Elevated reports whether the token grants privileged operations.
func (t Token) Elevated() bool { return t.elevated }
