package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/gebo/internal/storage"
	"github.com/starford/gebo/internal/testutil"
)

// watcherTestEnv sets up a vault dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	vaultDir := t.TempDir()
	st, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	db := openTestDB(t)
	return vaultDir, st, db
}

func indexedChecksum(t *testing.T, db *DB, path string) string {
	t.Helper()
	p, err := db.PageByPath(path)
	if err != nil || p == nil {
		return ""
	}
	return p.Checksum
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	vaultDir, st, db := watcherTestEnv(t)
	logger := testutil.TestLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, st, vaultDir, logger, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return indexedChecksum(t, db, "new.md") != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.md" {
				return true
			}
		}
		return false
	}, "expected created:new.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	vaultDir, st, db := watcherTestEnv(t)
	logger := testutil.TestLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, st, vaultDir, logger, nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(vaultDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return indexedChecksum(t, db, filepath.Join("subdir", "deep.md")) != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromSnapshot(t *testing.T) {
	vaultDir, st, db := watcherTestEnv(t)
	logger := testutil.TestLogger(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "del.md"), []byte("# Delete Me\n"), 0o644)
	if err := Sync(db, st, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if indexedChecksum(t, db, "del.md") == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, st, vaultDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(vaultDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return indexedChecksum(t, db, "del.md") == ""
	}, "deleted file still in snapshot")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	vaultDir, st, db := watcherTestEnv(t)
	logger := testutil.TestLogger(t)

	_ = os.WriteFile(filepath.Join(vaultDir, "old.md"), []byte("# Rename\n"), 0o644)
	if err := Sync(db, st, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, st, vaultDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(vaultDir, "old.md"), filepath.Join(vaultDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return indexedChecksum(t, db, "old.md") == "" &&
			indexedChecksum(t, db, "renamed.md") != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
