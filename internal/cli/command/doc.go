// Package command implements the myke command line using urfave/cli/v2.
//
//   - flags.go: myke flags, splitting them from task arguments
//   - root.go: Dispatcher, loading task sources and dispatch resolution
//   - tree.go: command tree built from the task registry
//   - params.go: task parameters as flags and positional arguments
//   - explain.go: --myke-explain output
//   - watch.go: --myke-watch reload loop
//
// Watch mode reloads every task source into a fresh registry after each
// change.
package command
