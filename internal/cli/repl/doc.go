// Package repl provides the interactive task prompt.
//
//   - repl.go: main loop, shell-style line splitting and dispatch
//   - completer.go: task name completion and "did you mean" suggestions
//   - history.go: history persistence (~/.myke/history)
//
// Each line is split like a shell would split it and handed to an
// Executor; "exit" and "quit" leave the loop, as does end of input.
package repl
