package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/gebo/internal/graph"
	"github.com/starford/gebo/internal/models"
)

// Verify *DB satisfies the graph build contract at compile time.
var _ graph.Source = (*DB)(nil)

// AllPages returns the page snapshot for one graph build.
func (db *DB) AllPages(ctx context.Context) ([]models.Page, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, id, name, journal, hidden, aliases, checksum, updated_at
		FROM pages ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("store: all pages: %w", err)
	}
	defer rows.Close()

	var out []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pageModel(p))
	}
	return out, rows.Err()
}

// BlockReferences returns every block carrying references, grouped by page.
// Stored wikilink names are resolved to page identifiers here, at read time.
func (db *DB) BlockReferences(ctx context.Context) ([][]models.Block, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, page_id, content, page_refs, block_refs, path_names
		FROM blocks ORDER BY page_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("store: block references: %w", err)
	}
	defer rows.Close()

	var (
		out      [][]models.Block
		current  []models.Block
		lastPage string
	)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		if len(b.Refs) == 0 {
			continue
		}
		if b.PageID != lastPage && current != nil {
			out = append(out, current)
			current = nil
		}
		lastPage = b.PageID
		current = append(current, b)
	}
	if current != nil {
		out = append(out, current)
	}
	return out, rows.Err()
}

// Block resolves a raw block identifier to its stored block, returning nil
// when unknown.
func (db *DB) Block(ctx context.Context, id string) (*models.Block, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, page_id, content, page_refs, block_refs, path_names
		FROM blocks WHERE id = ? LIMIT 1
	`, id)
	b, err := scanBlockRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: block %s: %w", id, err)
	}
	return b, nil
}

func pageModel(p *PageRow) models.Page {
	return models.Page{
		ID:      p.ID,
		Name:    p.Name,
		Journal: p.Journal,
		Properties: models.PageProperties{
			Aliases:   p.Aliases,
			GraphHide: p.Hidden,
		},
		Path:      p.Path,
		Checksum:  p.Checksum,
		UpdatedAt: p.UpdatedAt,
	}
}

func scanBlock(r rowScanner) (models.Block, error) {
	b, err := scanBlockRow(r)
	if err != nil {
		return models.Block{}, err
	}
	return *b, nil
}

func scanBlockRow(r rowScanner) (*models.Block, error) {
	var (
		b         models.Block
		pageRefs  string
		blockRefs string
		pathNames string
	)
	if err := r.Scan(&b.ID, &b.PageID, &b.Content, &pageRefs, &blockRefs, &pathNames); err != nil {
		return nil, err
	}

	var names, blocks, path []string
	_ = json.Unmarshal([]byte(pageRefs), &names)
	_ = json.Unmarshal([]byte(blockRefs), &blocks)
	_ = json.Unmarshal([]byte(pathNames), &path)

	for _, name := range names {
		b.Refs = append(b.Refs, models.PageID(name))
	}
	b.Refs = append(b.Refs, blocks...)

	b.PathRefs = append(b.PathRefs, b.PageID)
	for _, name := range path {
		b.PathRefs = append(b.PathRefs, models.PageID(name))
	}
	return &b, nil
}
