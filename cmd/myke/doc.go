// Package main provides the entry point for myke.
//
// myke loads tasks from Mykefiles (Lua or YAML) and runs them as
// subcommands. Task parameters become flags or positional arguments.
//
// Usage:
//
//	myke                      list tasks
//	myke build --tag v1       run a task
//	myke docker build         run a nested task
//	myke --myke-explain test  show what a task would run
//	myke --myke-repl          interactive prompt
package main
