package updater

import (
	"fmt"
	"io"
	"sync"

	"github.com/sentra-labs/installer/internal/repo"
)

// Updater coordinates one instance installation: check, preflight,
// download everything, then apply. A mutex serializes whole update cycles
// per handle; callers must not run two updaters against the same target
// directory.
type Updater struct {
	client   *repo.Client
	target   string
	modes    ModeTable
	progress io.Writer

	mu sync.Mutex
}

// Option configures an Updater.
type Option func(*Updater)

// WithModes overrides the post-write permission policy.
func WithModes(modes ModeTable) Option {
	return func(u *Updater) {
		u.modes = modes
	}
}

// WithProgress directs coarse download progress to w.
func WithProgress(w io.Writer) Option {
	return func(u *Updater) {
		u.progress = w
	}
}

// New creates an Updater that installs the client's configured instance
// into targetDir.
func New(client *repo.Client, targetDir string, opts ...Option) *Updater {
	u := &Updater{
		client: client,
		target: targetDir,
		modes:  DefaultModes,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Update brings the target directory in line with the newest published
// state. The sequence is: refresh manifests (if the cache expired), build
// the plan, audit permissions, download every New/Modify file, then apply.
// Nothing is applied if any required download fails; a failure during
// apply stops the remaining entries but does not roll back the ones
// already written — re-running Update converges.
func (u *Updater) Update() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.client.Newest()
	if err != nil {
		return fmt.Errorf("checking newest version: %w", err)
	}

	record, err := LoadRecord(u.target)
	if err != nil {
		return err
	}

	plan, err := BuildPlan(state.Files, record.Files, u.target)
	if err != nil {
		return fmt.Errorf("planning update: %w", err)
	}

	if len(plan) > 0 {
		if err := AuditPlan(u.target, plan); err != nil {
			return fmt.Errorf("permission preflight: %w", err)
		}

		// Download everything before mutating anything. A single failure
		// discards all buffers and aborts the cycle.
		fetcher := NewFetcher(u.client, state.Symlinks, u.progress)
		downloads := make(map[string][]byte, len(plan))
		for _, relPath := range plan.Downloads() {
			content, err := fetcher.Fetch(relPath, state.Files[relPath])
			if err != nil {
				return fmt.Errorf("downloading %s: %w", relPath, err)
			}
			downloads[relPath] = content
		}

		applier := &Applier{Root: u.target, Modes: u.modes}
		if err := applier.Apply(plan, downloads, state.Files); err != nil {
			return err
		}
	}

	// Persist the manifest that is now installed; it seeds the next run's
	// deletion comparison.
	if raw := u.client.InstanceDocument(); raw != nil {
		if err := SaveRecord(u.target, raw); err != nil {
			return err
		}
	}
	return nil
}

// Plan computes the current action plan without mutating anything, for
// callers that only want to inspect pending work.
func (u *Updater) Plan() (Plan, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	state, err := u.client.Newest()
	if err != nil {
		return nil, err
	}
	record, err := LoadRecord(u.target)
	if err != nil {
		return nil, err
	}
	return BuildPlan(state.Files, record.Files, u.target)
}
