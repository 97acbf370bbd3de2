package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPage(path, name string) PageRow {
	return PageRow{
		Path:      path,
		ID:        models.PageID(name),
		Name:      name,
		Checksum:  "cs-" + path,
		UpdatedAt: time.Now(),
	}
}

func TestUpsertAndPageByPath(t *testing.T) {
	db := openTestDB(t)

	p := testPage("topics/go.md", "Go")
	p.Aliases = []string{"Golang"}
	blocks := []BlockRow{
		{ID: "b1", Position: 0, Content: "intro", PageRefs: []string{"Rust"}},
	}
	if err := db.UpsertPage(p, blocks); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.PageByPath("topics/go.md")
	if err != nil {
		t.Fatalf("page by path: %v", err)
	}
	if got == nil {
		t.Fatal("expected page, got nil")
	}
	if got.Name != "Go" || got.ID != models.PageID("Go") {
		t.Errorf("unexpected row: %+v", got)
	}
	if len(got.Aliases) != 1 || got.Aliases[0] != "Golang" {
		t.Errorf("aliases not preserved: %v", got.Aliases)
	}

	missing, err := db.PageByPath("nope.md")
	if err != nil {
		t.Fatalf("page by path: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown path, got %+v", missing)
	}
}

func TestUpsertRenameRemovesOldBlocks(t *testing.T) {
	db := openTestDB(t)

	old := testPage("note.md", "Old Title")
	if err := db.UpsertPage(old, []BlockRow{{ID: "b1", Position: 0, Content: "x"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Same file, new title: the name-derived page ID changes.
	renamed := testPage("note.md", "New Title")
	if err := db.UpsertPage(renamed, []BlockRow{{ID: "b2", Position: 0, Content: "y"}}); err != nil {
		t.Fatalf("upsert rename: %v", err)
	}

	var stale int
	if err := db.conn.QueryRow(`SELECT count(*) FROM blocks WHERE page_id = ?`, old.ID).Scan(&stale); err != nil {
		t.Fatalf("count: %v", err)
	}
	if stale != 0 {
		t.Errorf("expected old blocks removed, found %d", stale)
	}

	var fresh int
	if err := db.conn.QueryRow(`SELECT count(*) FROM blocks WHERE page_id = ?`, renamed.ID).Scan(&fresh); err != nil {
		t.Fatalf("count: %v", err)
	}
	if fresh != 1 {
		t.Errorf("expected 1 block under new id, found %d", fresh)
	}
}

func TestDeletePage(t *testing.T) {
	db := openTestDB(t)

	p := testPage("a.md", "A")
	if err := db.UpsertPage(p, []BlockRow{{ID: "b1", Position: 0}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.DeletePage("a.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := db.PageByPath("a.md")
	if err != nil {
		t.Fatalf("page by path: %v", err)
	}
	if got != nil {
		t.Error("page still present after delete")
	}

	var blocks int
	if err := db.conn.QueryRow(`SELECT count(*) FROM blocks WHERE page_id = ?`, p.ID).Scan(&blocks); err != nil {
		t.Fatalf("count: %v", err)
	}
	if blocks != 0 {
		t.Errorf("expected blocks removed, found %d", blocks)
	}
}

func TestListPages(t *testing.T) {
	db := openTestDB(t)

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		if err := db.UpsertPage(testPage(name+".md", name), nil); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	rows, total, err := db.ListPages(2, 0, "name")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(rows) != 2 || rows[0].Name != "Alpha" || rows[1].Name != "Bravo" {
		t.Errorf("unexpected page order: %+v", rows)
	}

	rows, _, err = db.ListPages(10, 2, "name")
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Charlie" {
		t.Errorf("unexpected offset result: %+v", rows)
	}
}

func TestAllChecksums(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertPage(testPage("a.md", "A"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.UpsertPage(testPage("b.md", "B"), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("all checksums: %v", err)
	}
	if len(sums) != 2 || sums["a.md"] != "cs-a.md" || sums["b.md"] != "cs-b.md" {
		t.Errorf("unexpected checksums: %v", sums)
	}
}

func TestSearch(t *testing.T) {
	db := openTestDB(t)

	p := testPage("go.md", "Go")
	if err := db.UpsertPage(p, []BlockRow{{ID: "b1", Position: 0, Content: "concurrency with goroutines"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.UpsertPage(testPage("misc.md", "Misc"), []BlockRow{{ID: "b2", Position: 0, Content: "nothing here"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := db.Search("goroutines", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "go.md" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSyncIndexesAndRemovesStale(t *testing.T) {
	db := openTestDB(t)
	vault := testutil.TestVault(t, map[string]string{
		"go.md":      "# Go\n\n- uses [[Concurrency]]\n",
		"gone.md":    "# Gone\n",
		"journal.md": "# 2024-01-15\n",
	})
	logger := testutil.TestLogger(t)

	if err := Sync(db, vault, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, err := db.PageByPath("go.md")
	if err != nil || got == nil {
		t.Fatalf("page not indexed: %v", err)
	}
	if got.Name != "Go" {
		t.Errorf("name = %q, want Go", got.Name)
	}

	j, err := db.PageByPath("journal.md")
	if err != nil || j == nil {
		t.Fatalf("journal page not indexed: %v", err)
	}
	if !j.Journal {
		t.Error("date-titled page not flagged as journal")
	}

	// Remove a file and re-sync: the stale entry must go.
	if err := vault.Delete("gone.md"); err != nil {
		t.Fatalf("delete file: %v", err)
	}
	if err := Sync(db, vault, logger); err != nil {
		t.Fatalf("resync: %v", err)
	}
	stale, err := db.PageByPath("gone.md")
	if err != nil {
		t.Fatalf("page by path: %v", err)
	}
	if stale != nil {
		t.Error("stale entry survived resync")
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	db := openTestDB(t)
	vault := testutil.TestVault(t, map[string]string{"a.md": "# A\n"})
	logger := testutil.TestLogger(t)

	if err := Sync(db, vault, logger); err != nil {
		t.Fatalf("sync: %v", err)
	}
	before, err := db.PageByPath("a.md")
	if err != nil || before == nil {
		t.Fatalf("page not indexed: %v", err)
	}

	if err := Sync(db, vault, logger); err != nil {
		t.Fatalf("resync: %v", err)
	}
	after, err := db.PageByPath("a.md")
	if err != nil || after == nil {
		t.Fatalf("page gone after resync: %v", err)
	}
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("unchanged page was reindexed")
	}
}

func TestSourceAllPages(t *testing.T) {
	db := openTestDB(t)

	p := testPage("go.md", "Go")
	p.Journal = true
	p.Hidden = true
	p.Aliases = []string{"Golang"}
	if err := db.UpsertPage(p, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	pages, err := db.AllPages(context.Background())
	if err != nil {
		t.Fatalf("all pages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	got := pages[0]
	if got.ID != models.PageID("Go") || got.Name != "Go" || !got.Journal {
		t.Errorf("unexpected page: %+v", got)
	}
	if !got.Properties.GraphHide || len(got.Properties.Aliases) != 1 {
		t.Errorf("properties not mapped: %+v", got.Properties)
	}
}

func TestSourceBlockReferences(t *testing.T) {
	db := openTestDB(t)

	a := testPage("a.md", "A")
	b := testPage("b.md", "B")
	if err := db.UpsertPage(a, []BlockRow{
		{ID: "a1", Position: 0, Content: "plain text"},
		{ID: "a2", Position: 1, Content: "see [[B]]", PageRefs: []string{"B"}, PathNames: []string{"Parent"}},
	}); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := db.UpsertPage(b, []BlockRow{
		{ID: "b1", Position: 0, Content: "((a2))", BlockRefs: []string{"a2"}},
	}); err != nil {
		t.Fatalf("upsert b: %v", err)
	}

	batches, err := db.BlockReferences(context.Background())
	if err != nil {
		t.Fatalf("block references: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}

	var fromA []models.Block
	for _, batch := range batches {
		if batch[0].PageID == a.ID {
			fromA = batch
		}
	}
	if len(fromA) != 1 {
		t.Fatalf("expected only the referencing block from page A, got %d", len(fromA))
	}
	blk := fromA[0]
	if len(blk.Refs) != 1 || blk.Refs[0] != models.PageID("B") {
		t.Errorf("page ref not resolved to id: %v", blk.Refs)
	}
	if len(blk.PathRefs) != 2 || blk.PathRefs[0] != a.ID || blk.PathRefs[1] != models.PageID("Parent") {
		t.Errorf("path refs wrong: %v", blk.PathRefs)
	}
}

func TestSourceBlockLookup(t *testing.T) {
	db := openTestDB(t)

	a := testPage("a.md", "A")
	if err := db.UpsertPage(a, []BlockRow{{ID: "blk-1", Position: 0, Content: "target"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.Block(context.Background(), "blk-1")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if got == nil || got.PageID != a.ID {
		t.Errorf("unexpected block: %+v", got)
	}

	missing, err := db.Block(context.Background(), "nope")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown id, got %+v", missing)
	}
}
