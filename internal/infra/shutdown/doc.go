// Package shutdown releases process resources (the session database,
// the configuration watcher) when the console exits, whether the exit is
// normal or caused by SIGINT/SIGTERM.
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown("session-db", engine.Close)
//	ctx, stop := h.WithSignals(context.Background())
//	defer stop()
//	defer h.Close()
package shutdown
