package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sentra-labs/installer/internal/platform"
)

// AuditPlan verifies, without mutating anything, that every filesystem
// operation the plan requires is permitted. It fails fast on the first
// offending path so that no download bandwidth is wasted on an update that
// could never be applied.
//
// Modify and Delete need the target itself to be writable. New needs every
// ancestor directory that already exists to be writable; missing ancestors
// are not probed because the applier creates them inside their writable
// parent.
func AuditPlan(root string, plan Plan) error {
	for relPath, action := range plan {
		switch action {
		case ActionModify:
			if !platform.CanWrite(filepath.Join(root, filepath.FromSlash(relPath))) {
				return &PermissionError{Path: relPath, Op: "modify"}
			}

		case ActionDelete:
			if !platform.CanWrite(filepath.Join(root, filepath.FromSlash(relPath))) {
				return &PermissionError{Path: relPath, Op: "delete"}
			}

		case ActionNew:
			if err := auditCreate(root, relPath); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: %d for %s", ErrPlanConsistency, int(action), relPath)
		}
	}
	return nil
}

// auditCreate checks that a new file at relPath could be created: the
// instance root and every already-existing ancestor directory must be
// writable.
func auditCreate(root, relPath string) error {
	if !platform.CanWrite(root) {
		return &PermissionError{Path: ".", Op: "create"}
	}

	segments := strings.Split(relPath, "/")
	dir := root
	for _, segment := range segments[:len(segments)-1] {
		dir = filepath.Join(dir, segment)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			// The applier creates the rest with inherited permissions.
			break
		}
		if !platform.CanWrite(dir) {
			rel, _ := filepath.Rel(root, dir)
			return &PermissionError{Path: filepath.ToSlash(rel), Op: "create"}
		}
	}
	return nil
}
