package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/gebo/internal/models"
)

// fakeSource is an in-memory snapshot for build tests.
type fakeSource struct {
	pages     []models.Page
	blocks    [][]models.Block
	byID      map[string]models.Block
	pagesErr  error
	blocksErr error
	lookupErr error
}

func (f *fakeSource) AllPages(context.Context) ([]models.Page, error) {
	return f.pages, f.pagesErr
}

func (f *fakeSource) BlockReferences(context.Context) ([][]models.Block, error) {
	return f.blocks, f.blocksErr
}

func (f *fakeSource) Block(_ context.Context, id string) (*models.Block, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if b, ok := f.byID[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func page(id, name string) models.Page {
	return models.Page{ID: id, Name: name}
}

func build(t *testing.T, src *fakeSource, settings Settings) *Graph {
	t.Helper()
	g, err := NewBuilder(src, nil, nil).Build(context.Background(), settings)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestBuild_SingleReference(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("2", "B")},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"2"}}},
		},
	}
	g := build(t, src, Settings{})

	if g.NodeCount() != 2 {
		t.Fatalf("nodes = %d, want 2", g.NodeCount())
	}
	if w := g.EdgeWeight("1", "2"); w != 1 {
		t.Errorf("weight(1,2) = %d, want 1", w)
	}
}

func TestBuild_WeightAccumulates(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("2", "B")},
		blocks: [][]models.Block{
			{
				{ID: "b1", PageID: "1", Refs: []string{"2"}},
				{ID: "b2", PageID: "1", Refs: []string{"2"}},
			},
		},
	}
	g := build(t, src, Settings{})

	if w := g.EdgeWeight("1", "2"); w != 2 {
		t.Errorf("weight(1,2) = %d, want 2", w)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1 (single ordered pair)", g.EdgeCount())
	}
}

func TestBuild_JournalSettingOff(t *testing.T) {
	journal := page("2", "2025-08-24")
	journal.Journal = true
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), journal},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"2"}}},
		},
	}
	g := build(t, src, Settings{Journal: false})

	if g.HasNode("2") {
		t.Error("journal page admitted with setting off")
	}
	if w := g.EdgeWeight("1", "2"); w != 0 {
		t.Errorf("weight(1,2) = %d, want 0", w)
	}
}

func TestBuild_JournalSettingOn(t *testing.T) {
	journal := page("2", "2025-08-24")
	journal.Journal = true
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), journal},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"2"}}},
		},
	}
	g := build(t, src, Settings{Journal: true})

	if !g.HasNode("2") {
		t.Fatal("journal page missing with setting on")
	}
	if w := g.EdgeWeight("1", "2"); w != 1 {
		t.Errorf("weight(1,2) = %d, want 1", w)
	}
}

func TestBuild_GraphHideNeverAdmitted(t *testing.T) {
	hidden := page("2", "B")
	hidden.Properties.GraphHide = true
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), hidden},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"2"}}},
		},
	}
	g := build(t, src, Settings{})

	if g.HasNode("2") {
		t.Error("graph-hide page appeared as a node")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", g.EdgeCount())
	}
}

func TestBuild_AliasCollapse(t *testing.T) {
	// Page 1 carries alias "B"; page 2 is named "B"; page 3 references page 2.
	canonical := page("1", "A")
	canonical.Properties.Aliases = []string{"B"}
	src := &fakeSource{
		pages: []models.Page{canonical, page("2", "B"), page("3", "C")},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "3", Refs: []string{"2"}}},
		},
	}
	g := build(t, src, Settings{})

	if g.HasNode("2") {
		t.Error("aliased page appeared as a standalone node")
	}
	if w := g.EdgeWeight("3", "1"); w != 1 {
		t.Errorf("weight(3,1) = %d, want 1 (edge lands on canonical page)", w)
	}
	n, ok := g.Node("1")
	if !ok {
		t.Fatal("canonical node missing")
	}
	if len(n.Aliases) != 1 || n.Aliases[0] != "B" {
		t.Errorf("aliases = %v, want [B]", n.Aliases)
	}
}

func TestBuild_BlockTargetResolvesToOwningPage(t *testing.T) {
	owned := models.Block{ID: "blk-9", PageID: "2"}
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("2", "B")},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"blk-9"}}},
		},
		byID: map[string]models.Block{"blk-9": owned},
	}
	g := build(t, src, Settings{})

	if w := g.EdgeWeight("1", "2"); w != 1 {
		t.Errorf("weight(1,2) = %d, want 1 (block target credits owning page)", w)
	}
}

func TestBuild_UnresolvedTargetDropped(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A")},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"ghost"}}},
		},
	}
	g := build(t, src, Settings{})

	if g.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0 (unresolved target must be dropped, not error)", g.EdgeCount())
	}
}

func TestBuild_FetchFailureAborts(t *testing.T) {
	boom := errors.New("host unavailable")

	cases := map[string]*fakeSource{
		"pages": {pagesErr: boom},
		"blocks": {
			pages:     []models.Page{page("1", "A")},
			blocksErr: boom,
		},
		"block lookup": {
			pages: []models.Page{page("1", "A")},
			blocks: [][]models.Block{
				{{ID: "b1", PageID: "1", Refs: []string{"blk-x"}}},
			},
			lookupErr: boom,
		},
	}

	for name, src := range cases {
		g, err := NewBuilder(src, nil, nil).Build(context.Background(), Settings{})
		if err == nil {
			t.Errorf("%s fetch failure: expected error, got graph %v", name, g)
			continue
		}
		if !errors.Is(err, boom) {
			t.Errorf("%s fetch failure: error %v does not wrap cause", name, err)
		}
		if g != nil {
			t.Errorf("%s fetch failure: partial graph returned", name)
		}
	}
}

func TestBuild_RebuildIsStable(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("2", "B"), page("3", "C")},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "1", Refs: []string{"2", "3"}}},
			{{ID: "b2", PageID: "2", Refs: []string{"3"}}},
		},
	}

	first := build(t, src, Settings{})
	second := build(t, src, Settings{})

	fn, sn := first.Nodes(), second.Nodes()
	if len(fn) != len(sn) {
		t.Fatalf("node counts differ: %d vs %d", len(fn), len(sn))
	}
	for i := range fn {
		if fn[i].ID != sn[i].ID || fn[i].Label != sn[i].Label {
			t.Errorf("node %d differs: %+v vs %+v", i, fn[i], sn[i])
		}
	}

	fe, se := first.Edges(), second.Edges()
	if len(fe) != len(se) {
		t.Fatalf("edge counts differ: %d vs %d", len(fe), len(se))
	}
	for i := range fe {
		if fe[i] != se[i] {
			t.Errorf("edge %d differs: %+v vs %+v", i, fe[i], se[i])
		}
	}
}

// countingLayout records how many nodes received a position.
type countingLayout struct{ assigned int }

func (l *countingLayout) Assign(g *Graph) {
	for i, n := range g.Nodes() {
		g.SetPosition(n.ID, float64(i+1), float64(i+1))
		l.assigned++
	}
}

func TestBuild_EveryNodeHasPosition(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("2", "B")},
	}
	layout := &countingLayout{}
	g, err := NewBuilder(src, nil, layout).Build(context.Background(), Settings{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if layout.assigned != 2 {
		t.Fatalf("positions assigned = %d, want 2", layout.assigned)
	}
	for _, n := range g.Nodes() {
		if n.X == 0 && n.Y == 0 {
			t.Errorf("node %s has no position", n.ID)
		}
	}
}

func TestBuild_DuplicatePageIDAdmittedOnce(t *testing.T) {
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), page("1", "A")},
	}
	g := build(t, src, Settings{})

	if g.NodeCount() != 1 {
		t.Errorf("nodes = %d, want 1 (re-entry guard)", g.NodeCount())
	}
}

func TestBuild_EdgeNeedsBothEndpointsAdmitted(t *testing.T) {
	hidden := page("2", "B")
	hidden.Properties.GraphHide = true
	src := &fakeSource{
		pages: []models.Page{page("1", "A"), hidden},
		blocks: [][]models.Block{
			{{ID: "b1", PageID: "2", Refs: []string{"1"}}},
		},
	}
	g := build(t, src, Settings{})

	if g.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0 (source not admitted)", g.EdgeCount())
	}
}
