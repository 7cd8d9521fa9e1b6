// Package metrics records build and task metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites. The watch command
// swaps in a PrometheusRecorder and exposes it through HTTPHandler on the
// preview server.
//
//	runner := tasks.NewRunner(registry, tasks.WithRecorder(metrics.NewPrometheusRecorder(reg)))
package metrics
