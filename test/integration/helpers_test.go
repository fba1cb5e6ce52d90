//go:build integration

package integration_test

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// instanceFixture describes one published instance of the synthetic
// repository. files maps relative paths to their final content; serveAs
// substitutes the bytes actually served for a path (used for symlink
// markers); extra paths are served without appearing in the manifest.
type instanceFixture struct {
	name     string
	kind     string
	desc     string
	version  float64
	rev      int
	files    map[string]string
	serveAs  map[string]string
	extra    map[string]string
	symlinks []string
	deps     map[string]interface{}
}

// repoFixture is a mutable in-memory update repository. Tests mutate it
// between update cycles to publish new releases.
type repoFixture struct {
	mu        sync.Mutex
	instances map[string]*instanceFixture
}

func digestOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (r *repoFixture) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.URL.Path == "/repoInfo.json" {
		refs := map[string]interface{}{}
		for id, inst := range r.instances {
			refs[id] = map[string]string{
				"location": id,
				"name":     inst.name,
				"type":     inst.kind,
				"desc":     inst.desc,
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"version":   1,
			"instances": refs,
		})
		return
	}

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, req)
		return
	}
	inst, ok := r.instances[parts[0]]
	if !ok {
		http.NotFound(w, req)
		return
	}
	rel := parts[1]

	if rel == "instanceInfo.json" {
		digests := map[string]string{}
		for path, content := range inst.files {
			digests[path] = digestOf(content)
		}
		deps := inst.deps
		if deps == nil {
			deps = map[string]interface{}{}
		}
		m := map[string]interface{}{
			"version":      inst.version,
			"rev":          inst.rev,
			"files":        digests,
			"dependencies": deps,
		}
		if len(inst.symlinks) > 0 {
			m["symlinks"] = inst.symlinks
		}
		json.NewEncoder(w).Encode(m)
		return
	}

	content, ok := inst.serveAs[rel]
	if !ok {
		content, ok = inst.files[rel]
	}
	if !ok {
		content, ok = inst.extra[rel]
	}
	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Write([]byte(content))
}

// startRepo serves the fixture over TLS and returns the server.
func startRepo(t *testing.T, fixture *repoFixture) *httptest.Server {
	t.Helper()
	server := httptest.NewTLSServer(fixture)
	t.Cleanup(server.Close)
	return server
}

// assertFileContent fails unless the file exists with exactly the wanted
// content.
func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if string(data) != want {
		t.Errorf("file %s holds %q, want %q", path, data, want)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertMode fails unless the file carries the wanted permission bits.
func assertMode(t *testing.T, path string, want os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("stat %s: %v", path, err)
		return
	}
	if info.Mode().Perm() != want {
		t.Errorf("%s mode = %o, want %o", path, info.Mode().Perm(), want)
	}
}

func join(root string, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
