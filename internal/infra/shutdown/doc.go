// Package shutdown runs cleanup hooks when the process is asked to stop.
//
// Hooks run once, newest first, under a shared deadline. Errors from
// individual hooks are joined and do not stop later hooks.
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(log))
//	h.OnShutdown("http", srv.Shutdown)
//	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := h.WaitContext(ctx); err != nil { ... }
package shutdown
