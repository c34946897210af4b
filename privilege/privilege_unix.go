//go:build unix

package privilege

import "golang.org/x/sys/unix"

func isRoot() bool { return unix.Geteuid() == 0 }
