// Package graph builds the weighted directed reference graph from a snapshot
// of pages and block-level links.
package graph

// Node is an admitted page in the reference graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	// Aliases holds the page's alias names upper-cased for matching.
	Aliases []string `json:"aliases"`
	// RawAliases holds the same names unmodified.
	RawAliases []string `json:"rawAliases"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
}

// Edge is a directed reference between two nodes. Weight counts the
// qualifying block references observed between the endpoints.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is the output of one build pass. Nodes and edges keep insertion
// order so repeated builds over the same snapshot serialize identically.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]map[string]*Edge
	edgeOrder [][2]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]map[string]*Edge),
	}
}

// AddNode inserts a node. Re-adding an existing identifier is a no-op.
func (g *Graph) AddNode(n Node) {
	if _, ok := g.nodes[n.ID]; ok {
		return
	}
	g.nodes[n.ID] = &n
	g.nodeOrder = append(g.nodeOrder, n.ID)
}

// HasNode reports whether id is an admitted node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given identifier.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// AddReference folds one reference into the graph: a new edge starts at
// weight 1, an existing edge is incremented.
func (g *Graph) AddReference(source, target string) {
	if m, ok := g.edges[source]; ok {
		if e, ok := m[target]; ok {
			e.Weight++
			return
		}
	} else {
		g.edges[source] = make(map[string]*Edge)
	}
	g.edges[source][target] = &Edge{Source: source, Target: target, Weight: 1}
	g.edgeOrder = append(g.edgeOrder, [2]string{source, target})
}

// EdgeWeight returns the accumulated weight for the ordered pair, or 0 when
// no edge exists.
func (g *Graph) EdgeWeight(source, target string) int {
	if e, ok := g.edges[source][target]; ok {
		return e.Weight
	}
	return 0
}

// SetPosition assigns layout coordinates to a node.
func (g *Graph) SetPosition(id string, x, y float64) {
	if n, ok := g.nodes[id]; ok {
		n.X = x
		n.Y = y
	}
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, pair := range g.edgeOrder {
		out = append(out, *g.edges[pair[0]][pair[1]])
	}
	return out
}

// NodeCount returns the number of admitted nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of distinct ordered pairs with an edge.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }
