package store

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/starford/gebo/internal/checksum"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/parser"
	"github.com/starford/gebo/internal/storage"
)

// Sync walks the vault and brings the snapshot up to date:
//   - new/changed page files are parsed and upserted
//   - files removed from disk are deleted from the snapshot
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexPage(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePage(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexPage parses data and upserts the page and its blocks into the snapshot.
// Exported so the page service can index after a write.
func (db *DB) IndexPage(path string, data []byte) error {
	return indexPage(db, path, data)
}

// indexPage parses data and upserts the page and its blocks into the snapshot.
func indexPage(db *DB, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".md")
	name := res.Title
	if name == "" {
		name = stem
	}

	row := PageRow{
		Path:      path,
		ID:        models.PageID(name),
		Name:      name,
		Journal:   res.Journal || parser.JournalName(stem),
		Hidden:    res.GraphHide,
		Aliases:   res.Aliases,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}

	blocks := make([]BlockRow, len(res.Blocks))
	for i, b := range res.Blocks {
		id := b.ID
		if id == "" {
			id = checksum.Sum([]byte(path + "#" + strconv.Itoa(i)))[:16]
		}
		blocks[i] = BlockRow{
			ID:        id,
			Position:  i,
			Content:   b.Content,
			PageRefs:  b.PageRefs,
			BlockRefs: b.BlockRefs,
			PathNames: b.PathNames,
		}
	}

	return db.UpsertPage(row, blocks)
}
