package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating notes.
const NoteFormatContract = `# Laguz Note Format Contract

Notes created through Laguz SHOULD follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # OPTIONAL – derived from the body when absent
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Frontmatter is optional.** When present, the ` + "```" + `---` + "```" + ` fences must be
   the first thing in the content (no leading blank lines).
2. **Title fallback.** Without a frontmatter title, the first ATX heading is
   used, then the first non-empty line, then "Untitled".
3. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `meeting-notes` + "`" + `).
   Inline ` + "`" + `#tags` + "`" + ` in the body are also collected.
4. **Whitespace is preserved verbatim.** Indentation and blank lines in the
   body survive storage and rendering exactly as written.
5. **Identifiers are assigned by the server** (ULIDs). Clients never choose
   or embed note ids in content.
6. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
title: Weekly standup 2025-01-20
tags:
  - meeting-notes
---

# Weekly standup 2025-01-20

Attendees: Alice, Bob.

## Action items

- Alice to review the design doc
- Bob to update the roadmap
` + "```" + `
`
