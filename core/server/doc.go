// Package server runs a host.Dispatcher on a TCP listener with graceful
// shutdown. Two runtimes are available: the net/http adapter and the
// fasthttp-based edge adapter. The dispatcher is the same in both.
//
//	srv := server.New(":8080",
//		server.WithRuntime(server.RuntimeEdge),
//		server.WithShutdownTimeout(10*time.Second),
//		server.WithLogger(log),
//	)
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, app))
//	if err := g.Wait(); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Servers are usually built from Config via NewFromConfig, which reads
// SERVER_* variables including SERVER_RUNTIME.
//
// TLS is terminated on the listener for both runtimes when WithTLS is set or
// the certificate and key files are configured.
package server
