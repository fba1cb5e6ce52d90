package updater

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sentra-labs/installer/internal/repo"
)

// testRepository is a mutable in-memory update repository served over TLS.
// files drives both the manifest digest table and the served bytes; serveAs
// replaces the served bytes for a path (symlink markers publish the digest
// of the resolved content but serve the pointer line); extra paths are
// served without appearing in the manifest (symlink targets).
type testRepository struct {
	mu       sync.Mutex
	version  float64
	rev      int
	files    map[string]string // relative path → final content
	serveAs  map[string]string // relative path → bytes actually served
	extra    map[string]string // served but not listed in the manifest
	symlinks []string
	corrupt  map[string]bool // serve wrong bytes for these paths
}

func (r *testRepository) manifest() map[string]interface{} {
	digests := map[string]string{}
	for rel, content := range r.files {
		digests[rel] = HashBytes([]byte(content))
	}
	m := map[string]interface{}{
		"version":      r.version,
		"rev":          r.rev,
		"files":        digests,
		"dependencies": map[string]interface{}{},
	}
	if len(r.symlinks) > 0 {
		m["symlinks"] = r.symlinks
	}
	return m
}

func (r *testRepository) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case req.URL.Path == "/repoInfo.json":
		json.NewEncoder(w).Encode(map[string]interface{}{
			"version": 1,
			"instances": map[string]interface{}{
				"server": map[string]string{
					"location": "server",
					"name":     "Sentra Server",
					"type":     "server",
					"desc":     "test instance",
				},
			},
		})

	case req.URL.Path == "/server/instanceInfo.json":
		json.NewEncoder(w).Encode(r.manifest())

	case strings.HasPrefix(req.URL.Path, "/server/"):
		rel := strings.TrimPrefix(req.URL.Path, "/server/")
		content, ok := r.serveAs[rel]
		if !ok {
			content, ok = r.files[rel]
		}
		if !ok {
			content, ok = r.extra[rel]
		}
		if !ok {
			http.NotFound(w, req)
			return
		}
		if r.corrupt[rel] {
			content += "CORRUPTED"
		}
		w.Write([]byte(content))

	default:
		http.NotFound(w, req)
	}
}

// newTestUpdater serves the repository over TLS and returns an Updater
// installing into a fresh temp dir.
func newTestUpdater(t *testing.T, tr *testRepository, target string) *Updater {
	t.Helper()

	server := httptest.NewTLSServer(tr)
	t.Cleanup(server.Close)

	client, err := repo.New(server.URL, "server", repo.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("repo.New failed: %v", err)
	}
	return New(client, target)
}

func TestUpdate_FreshInstall(t *testing.T) {
	tr := &testRepository{
		version: 0.5,
		rev:     1,
		files: map[string]string{
			"x.txt":           "hello world",
			"lib/helper.py":   "def helper(): pass\n",
			"sentraServer.py": "#!/usr/bin/env python3\n",
		},
	}
	target := t.TempDir()
	u := newTestUpdater(t, tr, target)

	if err := u.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(target, "x.txt"))
	if err != nil {
		t.Fatalf("x.txt missing after update: %v", err)
	}
	if HashBytes(got) != HashBytes([]byte("hello world")) {
		t.Error("x.txt digest mismatch after apply")
	}

	// The applied manifest is persisted as the install record.
	record, err := LoadRecord(target)
	if err != nil {
		t.Fatalf("LoadRecord failed: %v", err)
	}
	if len(record.Files) != 3 {
		t.Errorf("record lists %d files, want 3", len(record.Files))
	}

	// Idempotence: nothing left to do against an unchanged manifest.
	plan, err := u.Plan()
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("second plan = %v, want empty", plan)
	}
}

func TestUpdate_DeleteRemovesFileAndPrunesDirs(t *testing.T) {
	tr := &testRepository{
		version: 0.5,
		rev:     1,
		files: map[string]string{
			"x.txt":          "keep me",
			"a/b/c/file.txt": "temporary",
		},
	}
	target := t.TempDir()

	if err := newTestUpdater(t, tr, target).Update(); err != nil {
		t.Fatalf("initial install failed: %v", err)
	}

	// The next release drops a/b/c/file.txt.
	tr.mu.Lock()
	tr.rev = 2
	delete(tr.files, "a/b/c/file.txt")
	tr.mu.Unlock()

	// A fresh handle simulates the next operator-invoked run.
	if err := newTestUpdater(t, tr, target).Update(); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(target, "a")); !os.IsNotExist(err) {
		t.Error("directory chain a/b/c should have been pruned")
	}
	if _, err := os.Stat(filepath.Join(target, "x.txt")); err != nil {
		t.Error("x.txt should have survived")
	}
}

func TestUpdate_FailedDownloadAppliesNothing(t *testing.T) {
	tr := &testRepository{
		version: 0.5,
		rev:     1,
		files: map[string]string{
			"good.txt": "fine",
			"bad.txt":  "will be corrupted in transit",
		},
		corrupt: map[string]bool{"bad.txt": true},
	}
	target := t.TempDir()
	u := newTestUpdater(t, tr, target)

	err := u.Update()
	if !errors.Is(err, ErrDigestMismatch) {
		t.Fatalf("err = %v, want ErrDigestMismatch", err)
	}

	// No partial application: neither file may exist.
	entries, readErr := os.ReadDir(target)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if len(entries) != 0 {
		t.Errorf("target contains %v after failed cycle, want nothing", entries)
	}
}

func TestUpdate_SymlinkMarkerResolved(t *testing.T) {
	shared := "the real shared module"
	tr := &testRepository{
		version: 0.5,
		rev:     1,
		// The manifest publishes the digest of the resolved content under
		// the marker path; the URL itself serves the pointer line.
		files:    map[string]string{"lib/shared.py": shared},
		serveAs:  map[string]string{"lib/shared.py": "shared_v2.py\n"},
		extra:    map[string]string{"lib/shared_v2.py": shared},
		symlinks: []string{"lib/shared.py"},
	}
	target := t.TempDir()
	u := newTestUpdater(t, tr, target)

	if err := u.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(target, "lib", "shared.py"))
	if err != nil {
		t.Fatalf("lib/shared.py missing: %v", err)
	}
	if string(got) != shared {
		t.Errorf("lib/shared.py holds %q, want the resolved content", got)
	}
}
