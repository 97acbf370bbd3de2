package mcpserver

// PageFormatContract describes the canonical Markdown page format that
// LLM consumers should follow when creating pages.
const PageFormatContract = `# Gebo Page Format Contract

Every Markdown page stored in Gebo MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL – defaults to the first H1, then the filename stem
alias:                              # OPTIONAL – alternative names; string or YAML list
  - other-name
graph-hide: false                   # OPTIONAL – true excludes the page from the graph
journal: false                      # OPTIONAL – true marks the page as a journal entry
---

# Page Title

- Pages are bullet outlines. Each bullet is a block.
  - Indent two spaces (or one tab) per nesting level.
  - Use [[wikilinks]] to reference other pages.
  - Use [[target|alias]] for display text that differs from the target.
- A block can carry a stable identifier:
  id:: my-block-id
- Reference a specific block with ((my-block-id)).
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "`" + `---` + "`" + ` fences must be the
   first thing in the file.
2. **The page name** is the frontmatter title, else the first H1 heading,
   else the filename stem.
3. **Journal pages** are recognised by a date-shaped filename stem
   (` + "`" + `2025-08-24` + "`" + ` or ` + "`" + `2025_08_24` + "`" + `) or an explicit ` + "`" + `journal: true` + "`" + ` property.
   They are excluded from the graph unless journal display is enabled.
4. **Wikilinks** use double brackets: ` + "`" + `[[Other Page]]` + "`" + `. The target is the
   page name, not the file path. Matching is case-insensitive for lookups.
5. **Block references** use double parentheses around a block identifier:
   ` + "`" + `((my-block-id))` + "`" + `. In the graph they credit the block's owning page.
6. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
7. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Go
alias: Golang
---

# Go

- A compiled language from Google. See [[Programming Languages]].
  - Goroutines make [[Concurrency]] cheap.
    id:: go-concurrency
- Compare with [[Rust]]: ((rust-ownership))
` + "```" + `
`
