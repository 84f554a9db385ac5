// Package health reports whether the client can do useful work.
//
// A Checker probes one dependency, such as backend reachability or the
// stored session, and returns a Result with a Status of Healthy, Degraded
// or Unhealthy. An Aggregator runs registered checkers concurrently under
// a shared deadline and folds their results into a Report:
//
//	agg := health.NewAggregator()
//	agg.Register("backend", client.NewBackendChecker(c, "/health"))
//	agg.Register("session", auth.NewSessionChecker(svc))
//
//	report := agg.Report(ctx)
//	if report.Status != health.StatusHealthy {
//	    ...
//	}
package health
