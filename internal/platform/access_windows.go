//go:build windows

package platform

import "os"

// CanWrite reports whether the current process may write to path. Windows
// has no access(2); the read-only attribute surfaced through the mode bits
// is the best cheap approximation.
func CanWrite(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}
