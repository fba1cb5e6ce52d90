package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sentra-labs/installer/internal/platform"
)

// ModeTable maps instance-relative paths to the permissions applied after
// their content is written. The policy is data so it can be tested in
// isolation.
type ModeTable map[string]os.FileMode

// DefaultModes is the permission policy for Sentra instances: the
// entry-point scripts are owner-only executable, the configuration
// template is readable by the owning group.
var DefaultModes = ModeTable{
	"sentraClient.py":            0o700,
	"sentraServer.py":            0o700,
	"sentraUpdate.py":            0o700,
	"graphExport.py":             0o700,
	"manageUsers.py":             0o700,
	"config/config.xml.template": 0o640,
}

// Applier performs the filesystem mutations of a fully downloaded,
// permission-cleared plan.
type Applier struct {
	Root  string
	Modes ModeTable
}

// Apply executes the plan: deletions first (with empty-directory pruning),
// then new and modified files in sorted order. Every written file is
// re-read and re-hashed against its published digest; a mismatch means the
// write corrupted the content and aborts the remaining entries. Entries
// already applied are not rolled back — re-running the idempotent
// plan/apply cycle is the recovery path.
func (a *Applier) Apply(plan Plan, downloads map[string][]byte, digests map[string]string) error {
	for _, relPath := range plan.Deletes() {
		if err := a.delete(relPath); err != nil {
			return err
		}
	}

	for _, relPath := range plan.Downloads() {
		content, ok := downloads[relPath]
		if !ok {
			return fmt.Errorf("%w: no downloaded content for %s", ErrPlanConsistency, relPath)
		}
		if err := a.write(relPath, content, digests[relPath], plan[relPath] == ActionNew); err != nil {
			return err
		}
	}

	return nil
}

// delete removes one file and prunes ancestor directories it leaves empty,
// walking from the file's parent upward and stopping at the first
// non-empty directory or the instance root. Pruning is best-effort: the
// file itself is already gone.
func (a *Applier) delete(relPath string) error {
	target := filepath.Join(a.Root, filepath.FromSlash(relPath))
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("deleting %s: %w", relPath, err)
	}
	a.pruneEmptyDirs(filepath.Dir(target))
	return nil
}

// pruneEmptyDirs removes dir and its ancestors while they are empty,
// never touching the instance root itself.
func (a *Applier) pruneEmptyDirs(dir string) {
	root := filepath.Clean(a.Root)
	for dir != root && strings.HasPrefix(dir, root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// write creates parent directories if needed, writes the content, verifies
// the on-disk result, and applies the mode table.
func (a *Applier) write(relPath string, content []byte, digest string, isNew bool) error {
	target := filepath.Join(a.Root, filepath.FromSlash(relPath))

	if isNew {
		if err := a.createParents(relPath); err != nil {
			return err
		}
	}

	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", relPath, err)
	}

	// Re-hash from disk: a mismatch here means the write itself corrupted
	// the content.
	onDisk, err := HashFile(target)
	if err != nil {
		return err
	}
	if onDisk != digest {
		return fmt.Errorf("%s after write: %w: expected %s, got %s", relPath, ErrDigestMismatch, digest, onDisk)
	}

	if mode, ok := a.Modes[relPath]; ok {
		if err := platform.Chmod(target, mode); err != nil {
			return fmt.Errorf("setting mode of %s: %w", relPath, err)
		}
	}
	return nil
}

// createParents creates the missing ancestor directories of relPath,
// erroring when an existing path component is not a directory.
func (a *Applier) createParents(relPath string) error {
	segments := strings.Split(relPath, "/")
	dir := a.Root
	for _, segment := range segments[:len(segments)-1] {
		dir = filepath.Join(dir, segment)

		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			if err := os.Mkdir(dir, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dir, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("probing %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("creating parents of %s: %s exists and is not a directory", relPath, dir)
		}
	}
	return nil
}
