package updater

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyRedirections is returned when a symlink-marker chain
	// exceeds the redirection bound. This indicates a malformed
	// repository, not a network failure.
	ErrTooManyRedirections = errors.New("too many symlink redirections")

	// ErrDigestMismatch is returned when content does not hash to its
	// published digest, either after download or after writing to disk.
	ErrDigestMismatch = errors.New("digest mismatch")

	// ErrPlanConsistency is returned when a plan carries an action value
	// the engine does not know. It should be unreachable.
	ErrPlanConsistency = errors.New("unknown plan action")
)

// PermissionError reports the first path the permission preflight found to
// be unwritable.
type PermissionError struct {
	Path string
	Op   string // "modify", "delete", or "create"
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s %s: permission denied", e.Op, e.Path)
}
