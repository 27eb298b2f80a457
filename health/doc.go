// Package health provides health checking for the MCP resource servers.
//
// A Checker reports one dependency's status: Healthy, Degraded, or
// Unhealthy. The Aggregator combines checkers into a composite report, and
// the HTTP handlers expose liveness, readiness, and detailed status
// endpoints.
//
//	agg := health.NewAggregator()
//	agg.Register("jwks", health.NewJWKSChecker(cfg.JWKSURL, nil))
//	agg.Register("store", health.NewCollectionChecker("notes", notes))
//	health.RegisterHandlers(mux, agg)
package health
