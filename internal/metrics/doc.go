// Package metrics provides build and watch metrics for assetbuilder.
//
// Components receive a Recorder by injection and default to NoopRecorder, so
// call sites never need nil checks. When monitoring.metrics_addr is configured
// the watch command swaps in a PrometheusRecorder and serves it through
// HTTPHandler:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
