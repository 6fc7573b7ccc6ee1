// Package output provides output formatting for the myke CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned table rendering
//   - json.go: JSON output
//   - yaml.go: YAML output
//   - tasks.go: the task listing shown by --myke-help
//   - progress.go: download progress for remote modules
package output
