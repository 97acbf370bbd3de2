package graph

import "math/rand"

// Layout assigns position attributes to every node of a finished graph.
type Layout interface {
	Assign(g *Graph)
}

// RandomLayout scatters nodes uniformly within a Width×Height frame. It is a
// cosmetic seed for a client-side force simulation, not a final placement.
type RandomLayout struct {
	Width  float64
	Height float64
	// Rand is the position source; nil uses the shared global source.
	Rand *rand.Rand
}

// Assign implements Layout.
func (l RandomLayout) Assign(g *Graph) {
	w, h := l.Width, l.Height
	if w <= 0 {
		w = 1000
	}
	if h <= 0 {
		h = 800
	}
	next := rand.Float64
	if l.Rand != nil {
		next = l.Rand.Float64
	}
	for _, n := range g.Nodes() {
		g.SetPosition(n.ID, next()*w, next()*h)
	}
}
