package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RecordFileName is the instance manifest persisted inside the target
// directory after a successful update. It is both an audit record and the
// deletion-comparison base for the next run.
const RecordFileName = "instanceInfo.json"

// Record is the persisted snapshot of what was installed last time. Only
// the file table matters for planning; the rest of the document is kept
// verbatim on disk.
type Record struct {
	Files map[string]string `json:"files"`
}

// LoadRecord reads the install record from dir. A missing record (fresh
// install) yields an empty record, which means no deletions will ever be
// planned — stray files unknown to this updater are left alone.
func LoadRecord(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, RecordFileName))
	if os.IsNotExist(err) {
		return &Record{Files: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading install record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing install record: %w", err)
	}
	if record.Files == nil {
		record.Files = map[string]string{}
	}
	return &record, nil
}

// SaveRecord writes the raw instance manifest into dir exactly as the
// repository served it.
func SaveRecord(dir string, rawManifest []byte) error {
	path := filepath.Join(dir, RecordFileName)
	if err := os.WriteFile(path, rawManifest, 0o644); err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}
	return nil
}
