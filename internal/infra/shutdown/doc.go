// Package shutdown ties a task run to process termination signals.
//
// The first SIGINT or SIGTERM cancels the run context, which kills the
// running subprocess and aborts Lua execution. Cleanup hooks (closing
// the Lua runtime, saving REPL history) run once when the run ends,
// whether or not a signal arrived.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx := h.Start(context.Background())
//	defer h.Shutdown()
package shutdown
