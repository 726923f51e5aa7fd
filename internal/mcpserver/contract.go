package mcpserver

// NoteFormatContract describes how notes are stored and how LLM consumers
// should write them.
const NoteFormatContract = `# nnote Note Format Contract

A note is a set of files that share one timestamp identifier. The
identifier is assigned when the note is created; callers never choose it.

## Identifiers

- Form: ` + "`HEAD-TAIL-NONCE`" + `, three groups of 8 lowercase hex digits,
  e.g. ` + "`0113dfb1-6c328450-5f3d2a19`" + ` (2025-01-20 09:30:15.25 UTC).
- HEAD packs year, month, day and hour; TAIL packs minute, second and
  microsecond. Identifiers sort in creation order.
- Tools accept an identifier wherever a date is expected.

## Files

- Each file is ` + "`<id><ext>`" + `, e.g. ` + "`<id>.md`" + `. A note may carry any number
  of extensions (` + "`.md`, `.png`, `.pdf`" + `), one file per extension.
- Text files (` + "`.md`, `.mw`, `.rst`, `.txt`" + `) are searched by ` + "`grep`" + `.
- The summary of a note is the frontmatter ` + "`title`" + ` of its first text
  file, else that file's first non-empty line with heading markers removed.

## Text body

` + "```" + `markdown
---
title: Weekly standup            # OPTIONAL - overrides the first line as summary
---

# Weekly standup

Body text in standard Markdown.
` + "```" + `

1. Start with a short first line; listings show it.
2. Encoding is UTF-8 with a trailing newline.

## Attributes

- Attributes are ` + "`key`" + ` or ` + "`key=value`" + ` pairs stored beside the note, not
  inside it. Use ` + "`tag_note`" + ` to change them.
- Keys never start with a dot: a dotted key names a file extension and
  only works as a filter.
- Removals are applied before assignments, so ` + "`remove: [status], assign: [status=done]`" + `
  replaces a value.

## Selecting notes

- ` + "`since`/`until`" + `: ` + "`YYYY[-MM[-DD[THH[:MM[:SS[.ffffff]]]]]]`" + ` or an identifier.
  ` + "`until`" + ` includes the whole period it names.
- ` + "`index`" + `: 1-based positions in walk order, e.g. ` + "`1-3,7`" + `.
- ` + "`select`/`exclude`" + `: attribute filters; ` + "`.md`" + ` selects notes with that file.
- ` + "`order`" + `: ` + "`reverse`" + ` (newest first, default) or ` + "`forward`" + `.

## Attachments

- Use ` + "`attach_file`" + ` with a ` + "`data:`" + ` URI or an http(s) URL to add an image
  or PDF to an existing note. Supported: png, jpg, jpeg, gif, webp, svg, pdf.
`
