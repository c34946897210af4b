//go:build !unix

package privilege

// There is no root-equivalent check implemented for other platforms, so
// Require always fails there.
func isRoot() bool { return false }
