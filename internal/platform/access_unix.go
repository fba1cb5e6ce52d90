//go:build !windows

package platform

import "golang.org/x/sys/unix"

// CanWrite reports whether the current process may write to path. It asks
// the kernel via access(2) so that ownership, group membership, and ACLs
// are all taken into account, not just the mode bits.
func CanWrite(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
