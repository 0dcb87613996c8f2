// Package server exposes the engine's operational endpoints over HTTP.
//
// It is not a request API: replies are analyzed in-process through the
// guardian package. The server only answers orchestrators and scrapers:
//
//	GET /healthz   liveness, always 200 while the process runs
//	GET /readyz    readiness report; 503 when a required check fails
//	GET /metrics   Prometheus exposition (when metrics are enabled)
//
// Usage:
//
//	srv := server.New(server.Config{Addr: ":9090"}, svc, svc.Metrics().Handler(), logger)
//	go srv.Start(ctx)
package server
