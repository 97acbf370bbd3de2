package graph

import "github.com/starford/gebo/internal/models"

// BuildAliasMap maps an aliased page's identifier to its canonical page's
// identifier. Alias names are matched exactly against page names within the
// same snapshot; names that resolve to no page are silently ignored. When the
// same page is claimed by several canonical pages the last registration wins.
func BuildAliasMap(pages []models.Page) map[string]string {
	byName := make(map[string]string, len(pages))
	for _, p := range pages {
		byName[p.Name] = p.ID
	}

	out := make(map[string]string)
	for _, p := range pages {
		for _, alias := range p.Properties.Aliases {
			aliased, ok := byName[alias]
			if !ok {
				continue
			}
			if aliased == p.ID {
				continue
			}
			out[aliased] = p.ID
		}
	}
	return out
}

// FilterAliased returns the pages whose identifier is not a key in the alias
// map, leaving exactly one entry per canonical identity.
func FilterAliased(aliasMap map[string]string, pages []models.Page) []models.Page {
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if _, ok := aliasMap[p.ID]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
