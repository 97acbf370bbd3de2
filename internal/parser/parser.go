// Package parser extracts frontmatter properties and the block outline from
// a Markdown page file.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	blockRefRe = regexp.MustCompile(`\(\(([A-Za-z0-9._:-]+)\)\)`)
	blockIDRe  = regexp.MustCompile(`(?m)^\s*id::\s*(\S+)\s*$`)
	bulletRe   = regexp.MustCompile(`^([ \t]*)-\s+(.*)$`)
	journalRe  = regexp.MustCompile(`^\d{4}[-_]\d{2}[-_]\d{2}$`)
)

// Block is one outline bullet with its extracted references.
type Block struct {
	// ID is the explicit "id:: value" property, empty when absent.
	ID      string
	Content string
	// PageRefs are wikilink targets found in the block content.
	PageRefs []string
	// BlockRefs are ((id)) targets found in the block content.
	BlockRefs []string
	// PathNames are the wikilink targets of every ancestor bullet,
	// ordered root-to-leaf. The owning page itself is not included.
	PathNames []string
}

// Result holds the output of parsing a page file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Aliases     []string
	GraphHide   bool
	Journal     bool
	Blocks      []Block
}

// Parse extracts frontmatter properties and the bullet outline from raw
// Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Aliases:     extractAliases(fm),
		GraphHide:   boolProp(fm, "graph-hide"),
		Journal:     boolProp(fm, "journal"),
		Blocks:      parseOutline(body),
	}, nil
}

// JournalName reports whether a page name stem looks like a dated journal
// entry (e.g. 2025-08-24).
func JournalName(stem string) bool {
	return journalRe.MatchString(stem)
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML, fall back to body-only.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// parseOutline walks the body line by line and builds the flat block list.
// Indentation (2 spaces or one tab per level) determines nesting; non-bullet
// lines attach to the preceding block.
func parseOutline(body string) []Block {
	type frame struct {
		depth int
		refs  []string
	}

	var (
		out     []Block
		stack   []frame
		current *Block
	)

	finalize := func() {
		if current == nil {
			return
		}
		current.PageRefs = extractPageRefs(current.Content)
		current.BlockRefs = extractBlockRefs(current.Content)
		if m := blockIDRe.FindStringSubmatch(current.Content); m != nil {
			current.ID = m[1]
		}
		out = append(out, *current)
		current = nil
	}

	for _, line := range strings.Split(body, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			// Continuation line of the current bullet.
			if current != nil && strings.TrimSpace(line) != "" {
				current.Content += "\n" + strings.TrimSpace(line)
			}
			continue
		}

		finalize()

		depth := indentDepth(m[1])

		// Pop frames for the finished sibling/descendant bullets, then record
		// the previous bullet's refs so children inherit them as path context.
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}

		var path []string
		for _, f := range stack {
			path = append(path, f.refs...)
		}

		current = &Block{Content: m[2], PathNames: path}
		stack = append(stack, frame{depth: depth, refs: extractPageRefs(m[2])})
	}
	finalize()

	return out
}

func indentDepth(indent string) int {
	depth := 0
	spaces := 0
	for _, r := range indent {
		if r == '\t' {
			depth++
			spaces = 0
			continue
		}
		spaces++
		if spaces == 2 {
			depth++
			spaces = 0
		}
	}
	return depth
}

// extractPageRefs returns deduplicated wikilink targets, normalising aliases.
func extractPageRefs(content string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		raw := m[1]
		// Handle display aliases: [[Target|Shown]] → Target.
		target := raw
		if i := strings.Index(raw, "|"); i >= 0 {
			target = raw[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractBlockRefs returns deduplicated ((id)) targets.
func extractBlockRefs(content string) []string {
	matches := blockRefRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// extractAliases reads the frontmatter "alias" property, accepting both a
// single string and a YAML list. "aliases" is accepted as a synonym.
func extractAliases(fm map[string]interface{}) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm["alias"]
	if !ok {
		raw, ok = fm["aliases"]
	}
	if !ok {
		return nil
	}

	var out []string
	appendOne := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}

	switch v := raw.(type) {
	case string:
		appendOne(v)
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				appendOne(s)
			}
		}
	}
	return out
}

func boolProp(fm map[string]interface{}, key string) bool {
	if fm == nil {
		return false
	}
	v, ok := fm[key].(bool)
	return ok && v
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
