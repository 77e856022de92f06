// Package metrics records binding and event activity.
//
// A Recorder receives one call per binding created, per binding update that
// reached the DOM, and per handled event. Nop discards everything; Prometheus
// exports the counts through a prometheus.Registerer:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheus(metrics.WithRegistry(reg), metrics.WithNamespace("myapp"))
//	vm, err := vbind.New(vbind.Options{El: "#app", Data: data, Document: doc, Metrics: rec})
//
// Metrics exported:
//   - <ns>_bindings_total{directive}: bindings created by the compiler
//   - <ns>_binding_updates_total{directive}: binding callbacks that wrote the DOM
//   - <ns>_events_total{event,status}: handled DOM events, status ok or error
//   - <ns>_event_duration_seconds{event}: event handling duration
//   - <ns>_sessions_active: live host sessions currently connected
package metrics
