package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/gebo/internal/models"
)

// Source supplies the snapshot a build pass consumes. A failing fetch aborts
// the whole pass; no partial graph is returned.
type Source interface {
	// AllPages returns every page in the snapshot.
	AllPages(ctx context.Context) ([]models.Page, error)
	// BlockReferences returns the blocks carrying references, grouped by page.
	BlockReferences(ctx context.Context) ([][]models.Block, error)
	// Block resolves a raw block identifier, returning nil when unknown.
	Block(ctx context.Context, id string) (*models.Block, error)
}

// Builder constructs reference graphs from a Source. Concurrent Build calls
// produce independent Graph instances.
type Builder struct {
	src    Source
	norm   Normalizer
	layout Layout
}

// NewBuilder creates a Builder. A nil normalizer falls back to
// PathNormalizer and a nil layout to a default RandomLayout.
func NewBuilder(src Source, norm Normalizer, layout Layout) *Builder {
	if norm == nil {
		norm = PathNormalizer{}
	}
	if layout == nil {
		layout = RandomLayout{}
	}
	return &Builder{src: src, norm: norm, layout: layout}
}

// Build runs one single-threaded pass: fetch the snapshot, resolve aliases,
// admit nodes, fold normalized references into weighted edges, and assign a
// position to every node.
func (b *Builder) Build(ctx context.Context, settings Settings) (*Graph, error) {
	pages, err := b.src.AllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch pages: %w", err)
	}

	// Journal membership is recorded before alias filtering so references
	// attributed to aliased journal pages are still suppressed.
	journals := make(map[string]bool)
	for _, p := range pages {
		if p.Journal {
			journals[p.ID] = true
		}
	}

	aliasMap := BuildAliasMap(pages)
	pages = FilterAliased(aliasMap, pages)

	g := New()
	byID := make(map[string]models.Page, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
		admitPage(g, p, settings)
	}

	batches, err := b.src.BlockReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch block references: %w", err)
	}

	for _, batch := range batches {
		for _, blk := range batch {
			for _, pair := range b.norm.Pairs(settings, journals, blk) {
				target, ok, err := b.resolveTarget(ctx, pair.Target, aliasMap, byID)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if g.HasNode(pair.Source) && g.HasNode(target) {
					g.AddReference(pair.Source, target)
				}
			}
		}
	}

	b.layout.Assign(g)
	return g, nil
}

// admitPage applies the node admission rules, in order: graph-hide property,
// idempotent re-entry guard, journal-inclusion setting.
func admitPage(g *Graph, p models.Page, settings Settings) {
	if p.Properties.GraphHide {
		return
	}
	if g.HasNode(p.ID) {
		return
	}
	if !settings.Journal && p.Journal {
		return
	}

	upper := make([]string, len(p.Properties.Aliases))
	for i, a := range p.Properties.Aliases {
		upper[i] = strings.ToUpper(a)
	}
	g.AddNode(Node{
		ID:         p.ID,
		Label:      p.Name,
		Aliases:    upper,
		RawAliases: append([]string(nil), p.Properties.Aliases...),
	})
}

// resolveTarget maps a raw reference target to the canonical page identifier
// that should receive the edge. Targets that cannot be mapped to any known
// page are dropped silently; only a failing block fetch is an error.
func (b *Builder) resolveTarget(ctx context.Context, raw string, aliasMap map[string]string, pages map[string]models.Page) (string, bool, error) {
	if canon, ok := resolvePage(raw, aliasMap, pages); ok {
		return canon, true, nil
	}

	// Not a page: treat as a block identifier and credit its owning page.
	blk, err := b.src.Block(ctx, raw)
	if err != nil {
		return "", false, fmt.Errorf("graph: fetch block %s: %w", raw, err)
	}
	if blk == nil {
		return "", false, nil
	}
	if canon, ok := resolvePage(blk.PageID, aliasMap, pages); ok {
		return canon, true, nil
	}
	return "", false, nil
}

// resolvePage maps id through the alias map to a page present in the
// (alias-filtered) snapshot.
func resolvePage(id string, aliasMap map[string]string, pages map[string]models.Page) (string, bool) {
	if canon, ok := aliasMap[id]; ok {
		id = canon
	}
	if _, ok := pages[id]; ok {
		return id, true
	}
	return "", false
}
