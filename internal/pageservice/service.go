// Package pageservice coordinates vault storage, the snapshot store, and
// graph builds behind one service facade.
package pageservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/checksum"
	"github.com/starford/gebo/internal/graph"
	"github.com/starford/gebo/internal/parser"
	"github.com/starford/gebo/internal/storage"
	"github.com/starford/gebo/internal/store"
)

// PageDetail is the full representation of a page.
type PageDetail struct {
	Path        string         `json:"path"`
	Name        string         `json:"name"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Aliases     []string       `json:"aliases"`
	Journal     bool           `json:"journal"`
	GraphHide   bool           `json:"graphHide"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Checksum  string    `json:"checksum"`
	Journal   bool      `json:"journal"`
	Aliases   []string  `json:"aliases"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, snapshot, and graph operations.
type Service struct {
	store    storage.Provider
	db       *store.DB
	builder  *graph.Builder
	settings graph.Settings
}

// NewService creates a new page service. settings carries the configured
// defaults for graph builds.
func NewService(st storage.Provider, db *store.DB, builder *graph.Builder, settings graph.Settings) *Service {
	return &Service{store: st, db: db, builder: builder, settings: settings}
}

// Graph runs one build pass over the current snapshot. journalOverride, when
// non-nil, overrides the configured journal-inclusion setting for this pass.
func (s *Service) Graph(ctx context.Context, journalOverride *bool) (*graph.Graph, error) {
	settings := s.settings
	if journalOverride != nil {
		settings.Journal = *journalOverride
	}
	return s.builder.Build(ctx, settings)
}

// ResolveNode finds a graph node by label or alias, case-insensitively.
// Journal pages are included in the lookup regardless of the configured
// default, so a journal name resolves even when hidden from the default view.
func (s *Service) ResolveNode(ctx context.Context, name string) (*graph.Node, error) {
	settings := s.settings
	settings.Journal = true
	g, err := s.builder.Build(ctx, settings)
	if err != nil {
		return nil, err
	}
	idx := graph.BuildNodeIndex(g)
	id, ok := idx.Resolve(name)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	n, ok := g.Node(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &n, nil
}

// GetPage reads a page from storage and parses it.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return buildPageDetail(path, data)
}

// CreatePage writes a new page and indexes it.
func (s *Service) CreatePage(_ context.Context, path string, content []byte) (*PageDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.db.IndexPage(path, content); err != nil {
		return nil, err
	}
	return buildPageDetail(path, content)
}

// UpdatePage writes updated content with optimistic concurrency.
func (s *Service) UpdatePage(_ context.Context, path string, content []byte, ifMatch string) (*PageDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.db.IndexPage(path, content); err != nil {
		return nil, err
	}
	return buildPageDetail(path, content)
}

// DeletePage removes a page from storage and the snapshot.
func (s *Service) DeletePage(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeletePage(path)
}

// ListPages returns paginated pages from the snapshot.
func (s *Service) ListPages(_ context.Context, limit, offset int, sort string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Path:      r.Path,
			Name:      r.Name,
			Checksum:  r.Checksum,
			Journal:   r.Journal,
			Aliases:   nonNilSlice(r.Aliases),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the snapshot store.
func (s *Service) Search(_ context.Context, query string, limit int) ([]store.SearchResult, error) {
	return s.db.Search(query, limit)
}

// buildPageDetail constructs a PageDetail from raw data without re-reading
// the file.
func buildPageDetail(path string, data []byte) (*PageDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Path:        path,
		Name:        res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Aliases:     nonNilSlice(res.Aliases),
		Journal:     res.Journal,
		GraphHide:   res.GraphHide,
		Frontmatter: res.Frontmatter,
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
