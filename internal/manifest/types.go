package manifest

import "fmt"

// Repository is the repository-level manifest listing all managed instances.
type Repository struct {
	SchemaVersion int                    `json:"version,omitempty"`
	Instances     map[string]InstanceRef `json:"instances"`
}

// InstanceRef locates and describes one instance inside the repository.
type InstanceRef struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"desc"`
}

// Instance is the per-instance manifest describing one published version.
// File paths use forward-slash segments regardless of host OS, and digests
// are lowercase hex SHA-256.
type Instance struct {
	Version      float64           `json:"version"`
	Revision     int               `json:"rev"`
	Files        map[string]string `json:"files"`
	Symlinks     []string          `json:"symlinks,omitempty"`
	Dependencies Dependencies      `json:"dependencies"`
}

// Dependencies is the advisory list of third-party modules an instance
// needs at runtime. The installer checks these before installing; it never
// installs them itself.
type Dependencies struct {
	Pip   []PipDependency   `json:"pip,omitempty"`
	Other []OtherDependency `json:"other,omitempty"`
}

// PipDependency is a Python module installable via pip.
type PipDependency struct {
	Import  string `json:"import"`
	Packet  string `json:"packet"`
	Version string `json:"version,omitempty"`
}

// OtherDependency is a module the user has to provide by other means.
type OtherDependency struct {
	Import  string `json:"import"`
	Version string `json:"version,omitempty"`
}

// Identity is the (version, revision) pair identifying a published state,
// totally ordered with version as the primary key.
type Identity struct {
	Version  float64
	Revision int
}

// Identity returns the instance manifest's version identity.
func (m *Instance) Identity() Identity {
	return Identity{Version: m.Version, Revision: m.Revision}
}

// SymlinkSet returns the symlink markers as a set keyed by relative path.
func (m *Instance) SymlinkSet() map[string]bool {
	set := make(map[string]bool, len(m.Symlinks))
	for _, p := range m.Symlinks {
		set[p] = true
	}
	return set
}

// Newer reports whether id is strictly newer than other.
func (id Identity) Newer(other Identity) bool {
	if id.Version != other.Version {
		return id.Version > other.Version
	}
	return id.Revision > other.Revision
}

// String formats the identity the way the repository displays versions,
// e.g. "0.501-2".
func (id Identity) String() string {
	return fmt.Sprintf("%.3f-%d", id.Version, id.Revision)
}
