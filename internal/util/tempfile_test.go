package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateTempFilePath(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateTempFilePath(dir, "inflight", "mp4")
	if err != nil {
		t.Fatalf("CreateTempFilePath: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path %q not under %q", path, dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "inflight_") || !strings.HasSuffix(base, ".mp4") {
		t.Errorf("unexpected temp file name %q", base)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("CreateTempFilePath should not create the file")
	}
}

func TestCreateTempFilePathMissingDir(t *testing.T) {
	if _, err := CreateTempFilePath(filepath.Join(t.TempDir(), "nope"), "x", "mp4"); err == nil {
		t.Error("expected error for a nonexistent directory")
	}
}

func TestCleanupStaleTempFiles(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "inflight_aaaa.mp4")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "inflight_bbbb.mp4")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(dir, "keep_me.mp4")
	if err := os.WriteFile(unrelated, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := CleanupStaleTempFiles(dir, "inflight", 24)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles: %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned %d files, want 1", n)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file should have been removed")
	}
	for _, p := range []string{fresh, unrelated} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should have survived the sweep: %v", p, err)
		}
	}
}

func TestCleanupStaleTempFilesMissingDirIsNoop(t *testing.T) {
	n, err := CleanupStaleTempFiles(filepath.Join(t.TempDir(), "gone"), "inflight", 1)
	if err != nil || n != 0 {
		t.Errorf("missing dir: got (%d, %v), want (0, nil)", n, err)
	}
}
