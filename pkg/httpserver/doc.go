// Package httpserver runs an http.Handler with sane timeouts and graceful
// shutdown.
//
// Run binds the listener, serves until the context is cancelled and then
// drains in-flight requests within the shutdown timeout:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Liveness and Readiness provide JSON probe handlers; Readiness takes named
// checks such as pg.Healthcheck and redis.Healthcheck.
package httpserver
