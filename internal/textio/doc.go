// Package textio reads and writes the files Mykefiles work with.
//
//   - read.go: text, lines, JSON (with gjson queries), YAML, TOML and
//     dotenv files, plus remote documents
//   - write.go: text and line writers with append/overwrite rules,
//     JSON edits through sjson, and the Mykefile scaffold
//   - utils.go: version strings and repository roots
//
// Structured readers return string-keyed maps and fail with
// domain.ErrInvalidDocument for anything else.
package textio
