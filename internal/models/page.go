// Package models defines the domain types for Gebo.
package models

import (
	"strings"
	"time"

	"github.com/starford/gebo/internal/checksum"
)

// Page is a node candidate in the reference graph. Pages are supplied
// wholesale for one build pass and are immutable during the build.
type Page struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Journal    bool           `json:"journal"`
	Properties PageProperties `json:"properties"`
	Path       string         `json:"path"`
	Checksum   string         `json:"checksum"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PageProperties is the property bag attached to a page.
type PageProperties struct {
	// Aliases lists other page names this page stands in for.
	Aliases []string `json:"aliases,omitempty"`
	// GraphHide excludes the page from the reference graph.
	GraphHide bool `json:"graph_hide,omitempty"`
}

// Block is a unit of content belonging to a page.
type Block struct {
	ID      string `json:"id"`
	PageID  string `json:"page_id"`
	Content string `json:"content"`
	// Refs holds raw reference targets: page identifiers or block identifiers.
	Refs []string `json:"refs,omitempty"`
	// PathRefs lists the page identifiers this block is nested beneath,
	// ordered root-to-leaf (the owning page comes first).
	PathRefs []string `json:"path_refs,omitempty"`
}

// PageMetadata is a lightweight representation returned by list operations.
type PageMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageID derives the stable, opaque identifier for a page name.
// Links resolve case-insensitively, so the name is folded before hashing.
func PageID(name string) string {
	return checksum.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))[:16]
}
