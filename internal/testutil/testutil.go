// Package testutil provides shared helpers for package tests.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/gebo/internal/storage"
)

// TestLogger returns a logger that discards output. Pass -v-friendly
// debugging through t.Log manually where needed.
func TestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestVault creates a temporary vault directory populated with the given
// files (path → content) and returns an FS provider rooted at it.
func TestVault(t *testing.T, files map[string]string) *storage.FS {
	t.Helper()
	root := t.TempDir()
	for p, content := range files {
		abs := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	fs, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("new fs: %v", err)
	}
	return fs
}
