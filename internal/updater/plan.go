package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Action classifies what has to happen to one file.
type Action int

const (
	ActionNew Action = iota + 1
	ActionModify
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionNew:
		return "new"
	case ActionModify:
		return "modify"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Plan maps instance-relative paths (forward-slash segments) to the action
// required to bring them in line with the published state. A path carries
// exactly one action. Plans are built fresh every cycle, never persisted.
type Plan map[string]Action

// Downloads returns the plan's New and Modify paths in sorted order —
// the set of files that need content fetched.
func (p Plan) Downloads() []string {
	paths := make([]string, 0, len(p))
	for path, action := range p {
		if action == ActionNew || action == ActionModify {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Deletes returns the plan's Delete paths in sorted order.
func (p Plan) Deletes() []string {
	var paths []string
	for path, action := range p {
		if action == ActionDelete {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// BuildPlan diffs the published file table against the installation under
// root. Disk state is authoritative for presence: a published path missing
// from disk is New even when the previous install record lists it. Paths
// whose on-disk digest already matches are left out of the plan entirely.
// Deletion candidates come only from the previous install record, so files
// this updater never wrote are left untouched.
func BuildPlan(remote map[string]string, record map[string]string, root string) (Plan, error) {
	plan := make(Plan)

	for relPath, wantDigest := range remote {
		local := filepath.Join(root, filepath.FromSlash(relPath))

		if _, err := os.Stat(local); os.IsNotExist(err) {
			plan[relPath] = ActionNew
			continue
		} else if err != nil {
			return nil, fmt.Errorf("probing %s: %w", local, err)
		}

		digest, err := HashFile(local)
		if err != nil {
			return nil, err
		}
		if digest != wantDigest {
			plan[relPath] = ActionModify
		}
	}

	for relPath := range record {
		if _, stillPublished := remote[relPath]; !stillPublished {
			plan[relPath] = ActionDelete
		}
	}

	return plan, nil
}
