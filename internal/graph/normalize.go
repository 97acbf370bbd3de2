package graph

import "github.com/starford/gebo/internal/models"

// Settings holds the per-build toggles supplied by the caller.
type Settings struct {
	// Journal includes dated journal pages in the graph when true.
	Journal bool
}

// RefPair is one directed reference emitted by a Normalizer. Source is a page
// identifier; Target is a raw reference that may denote a page or a block.
type RefPair struct {
	Source string
	Target string
}

// Normalizer turns one block into the reference pairs it contributes.
// The exact attribution rule over nested ancestors is a pluggable strategy.
type Normalizer interface {
	Pairs(settings Settings, journals map[string]bool, b models.Block) []RefPair
}

// PathNormalizer is the default strategy: every raw target is attributed to
// the block's owning page and, additionally, to each distinct ancestor page
// in the block's path, so nested context shows up as extra edges.
type PathNormalizer struct{}

// Pairs implements Normalizer.
func (PathNormalizer) Pairs(settings Settings, journals map[string]bool, b models.Block) []RefPair {
	sources := make([]string, 0, 1+len(b.PathRefs))
	seen := map[string]struct{}{b.PageID: {}}
	sources = append(sources, b.PageID)
	for _, anc := range b.PathRefs {
		if _, ok := seen[anc]; ok {
			continue
		}
		seen[anc] = struct{}{}
		sources = append(sources, anc)
	}

	var out []RefPair
	for _, target := range b.Refs {
		for _, src := range sources {
			// Ancestor attribution never points a page at itself; a block
			// referencing its own page still counts from the owning page.
			if src == target && src != b.PageID {
				continue
			}
			if !settings.Journal && (journals[src] || journals[target]) {
				continue
			}
			out = append(out, RefPair{Source: src, Target: target})
		}
	}
	return out
}
