// Package identity resolves usernames against the platform user directory.
package identity

import (
	"fmt"
	"os/user"
	"strconv"
)

// Identity describes the account a workload is executed as. It is built
// once from the user directory and never mutated afterwards.
type Identity struct {
	Username string
	UID      uint32
	GID      uint32
	HomeDir  string
}

// NotFoundError is returned when the username has no matching account.
type NotFoundError struct {
	Username string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %q not found", e.Username)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Lookup resolves username to an Identity with numeric uid / primary gid
// and the configured home directory path.
func Lookup(username string) (Identity, error) {
	u, err := user.Lookup(username)
	if err != nil {
		if _, ok := err.(user.UnknownUserError); ok {
			return Identity{}, &NotFoundError{Username: username, Err: err}
		}
		return Identity{}, fmt.Errorf("looking up user %q: %w", username, err)
	}

	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return Identity{}, fmt.Errorf("user %q has no numeric UID: %w", username, err)
	}

	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return Identity{}, fmt.Errorf("user %q has no numeric GID: %w", username, err)
	}

	return Identity{
		Username: u.Username,
		UID:      uint32(uid),
		GID:      uint32(gid),
		HomeDir:  u.HomeDir,
	}, nil
}
