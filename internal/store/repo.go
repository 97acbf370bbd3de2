package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string
	ID        string
	Name      string
	Journal   bool
	Hidden    bool
	Aliases   []string
	Checksum  string
	UpdatedAt time.Time
}

// BlockRow represents a row in the blocks table. Reference targets are stored
// as raw wikilink names and resolved to identifiers at read time, so pages
// indexed later still receive their edges.
type BlockRow struct {
	ID        string
	Position  int
	Content   string
	PageRefs  []string
	BlockRefs []string
	PathNames []string
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Name    string
	Snippet string
}

// UpsertPage replaces a page, its blocks, and its FTS entry within a
// transaction.
func (db *DB) UpsertPage(p PageRow, blocks []BlockRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// The page identifier is name-derived, so a rename changes it; old blocks
	// are keyed by the previous identifier and must go first.
	var oldID string
	if err := tx.QueryRow(`SELECT id FROM pages WHERE path = ?`, p.Path).Scan(&oldID); err == nil {
		_, _ = tx.Exec(`DELETE FROM blocks WHERE page_id = ?`, oldID)
	}
	_, _ = tx.Exec(`DELETE FROM pages WHERE path = ?`, p.Path)

	aliasesJSON, _ := json.Marshal(sliceOrEmpty(p.Aliases))
	content := joinBlockContent(blocks)

	_, err = tx.Exec(`
		INSERT INTO pages (path, id, name, journal, hidden, aliases, content, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.Path, p.ID, p.Name, boolInt(p.Journal), boolInt(p.Hidden), string(aliasesJSON), content, p.Checksum, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert page: %w", err)
	}

	if err := ftsUpsert(tx, p.Path, p.Name, content, p.Aliases); err != nil {
		return err
	}

	if len(blocks) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO blocks (id, page_id, position, content, page_refs, block_refs, path_names)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare block insert: %w", err)
		}
		defer stmt.Close()
		for _, b := range blocks {
			pageRefs, _ := json.Marshal(sliceOrEmpty(b.PageRefs))
			blockRefs, _ := json.Marshal(sliceOrEmpty(b.BlockRefs))
			pathNames, _ := json.Marshal(sliceOrEmpty(b.PathNames))
			if _, err := stmt.Exec(b.ID, p.ID, b.Position, b.Content, string(pageRefs), string(blockRefs), string(pathNames)); err != nil {
				return fmt.Errorf("store: insert block: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its blocks, and its FTS entry.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	if err := tx.QueryRow(`SELECT id FROM pages WHERE path = ?`, path).Scan(&id); err == nil {
		_, _ = tx.Exec(`DELETE FROM blocks WHERE page_id = ?`, id)
	}
	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM pages WHERE path = ?`, path)

	return tx.Commit()
}

// PageByPath returns the stored row for a page file, or nil when not indexed.
func (db *DB) PageByPath(path string) (*PageRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, id, name, journal, hidden, aliases, checksum, updated_at
		FROM pages WHERE path = ?
	`, path)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: page by path: %w", err)
	}
	return p, nil
}

// ListPages returns paginated page rows ordered by the given sort field
// (path, name, or updated_at) plus the total count.
func (db *DB) ListPages(limit, offset int, sort string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "path"
	switch sort {
	case "name":
		order = "name"
	case "updated_at":
		order = "updated_at DESC"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, id, name, journal, hidden, aliases, checksum, updated_at
		FROM pages ORDER BY `+order+` LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// AllChecksums returns the stored checksum for every indexed page path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(r rowScanner) (*PageRow, error) {
	var (
		p           PageRow
		journal     int
		hidden      int
		aliasesJSON string
	)
	if err := r.Scan(&p.Path, &p.ID, &p.Name, &journal, &hidden, &aliasesJSON, &p.Checksum, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Journal = journal != 0
	p.Hidden = hidden != 0
	_ = json.Unmarshal([]byte(aliasesJSON), &p.Aliases)
	return &p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func joinBlockContent(blocks []BlockRow) string {
	out := ""
	for i, b := range blocks {
		if i > 0 {
			out += "\n"
		}
		out += b.Content
	}
	return out
}
