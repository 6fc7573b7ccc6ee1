// Package service provides the task registry for myke.
//
// The Registry is an explicit object, passed by reference to every
// source that registers tasks. It contains:
//
//   - Registry: task registration, collision detection and lookup
//   - Options: functional options for task metadata
//   - Shell tasks: handlers that turn a script into a subprocess
//   - Filter: glob-based narrowing of the task set
//
// Registration happens during startup on a single goroutine, but the
// registry is safe for concurrent reads.
package service
