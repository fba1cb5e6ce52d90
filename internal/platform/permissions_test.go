package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCanWrite_WritableFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !CanWrite(path) {
		t.Error("expected writable file to be reported writable")
	}
}

func TestCanWrite_ReadOnlyFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses permission checks")
	}

	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(path, []byte("data"), 0o400); err != nil {
		t.Fatal(err)
	}

	if CanWrite(path) {
		t.Error("expected read-only file to be reported unwritable")
	}
}

func TestCanWrite_Missing(t *testing.T) {
	if CanWrite(filepath.Join(t.TempDir(), "missing")) {
		t.Error("expected missing path to be reported unwritable")
	}
}

func TestChmod(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Chmod is a no-op on Windows")
	}

	tmp := t.TempDir()
	path := filepath.Join(tmp, "script.py")
	if err := os.WriteFile(path, []byte("#!/usr/bin/env python3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Chmod(path, 0o700); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("mode = %o, want 700", info.Mode().Perm())
	}
}
