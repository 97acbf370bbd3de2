package graph

import "strings"

// NodeIndex maps upper-cased labels and aliases to node identifiers. It is
// rebuilt on demand from a finished graph, never persisted.
type NodeIndex map[string]string

// BuildNodeIndex derives the lookup index from a finished graph. On label or
// alias collisions across nodes the last writer wins.
func BuildNodeIndex(g *Graph) NodeIndex {
	idx := make(NodeIndex, g.NodeCount())
	for _, n := range g.Nodes() {
		idx[strings.ToUpper(n.Label)] = n.ID
		for _, alias := range n.Aliases {
			idx[alias] = n.ID
		}
	}
	return idx
}

// Resolve maps a free-text page name to a node identifier, matching labels
// and aliases case-insensitively.
func (idx NodeIndex) Resolve(name string) (string, bool) {
	id, ok := idx[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}
