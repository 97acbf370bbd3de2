package graph

import (
	"testing"

	"github.com/starford/gebo/internal/models"
)

func aliasedPage(id, name string, aliases ...string) models.Page {
	return models.Page{
		ID:         id,
		Name:       name,
		Properties: models.PageProperties{Aliases: aliases},
	}
}

func TestBuildAliasMap_Basic(t *testing.T) {
	pages := []models.Page{
		aliasedPage("1", "A", "B"),
		aliasedPage("2", "B"),
	}
	m := BuildAliasMap(pages)

	if len(m) != 1 {
		t.Fatalf("len = %d, want 1", len(m))
	}
	if m["2"] != "1" {
		t.Errorf("m[2] = %q, want 1", m["2"])
	}
}

func TestBuildAliasMap_UnresolvedNameIgnored(t *testing.T) {
	pages := []models.Page{
		aliasedPage("1", "A", "Does Not Exist"),
	}
	m := BuildAliasMap(pages)
	if len(m) != 0 {
		t.Errorf("unresolved alias should be ignored, got %v", m)
	}
}

func TestBuildAliasMap_SelfAliasIgnored(t *testing.T) {
	pages := []models.Page{
		aliasedPage("1", "A", "A"),
	}
	m := BuildAliasMap(pages)
	if len(m) != 0 {
		t.Errorf("self alias should not register, got %v", m)
	}
}

func TestBuildAliasMap_LastWriteWins(t *testing.T) {
	// Two pages both alias "C": the later registration wins.
	pages := []models.Page{
		aliasedPage("1", "A", "C"),
		aliasedPage("2", "B", "C"),
		aliasedPage("3", "C"),
	}
	m := BuildAliasMap(pages)

	if m["3"] != "2" {
		t.Errorf("m[3] = %q, want 2 (last registration wins)", m["3"])
	}
}

func TestFilterAliased(t *testing.T) {
	pages := []models.Page{
		aliasedPage("1", "A", "B"),
		aliasedPage("2", "B"),
		aliasedPage("3", "C"),
	}
	m := BuildAliasMap(pages)
	kept := FilterAliased(m, pages)

	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
	for _, p := range kept {
		if p.ID == "2" {
			t.Error("aliased page survived filtering")
		}
	}
}
