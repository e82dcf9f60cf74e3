// Package telemetry reports reconciliation passes to Prometheus and
// OpenTelemetry.
//
// Observer implements reconcile.Observer:
//
//	obs := telemetry.New(telemetry.WithRegistry(reg))
//	r := reconcile.New(doc, reconcile.WithObserver(obs))
//
// Every pass increments vtree_passes_total{kind,status}, observes
// vtree_pass_duration_seconds{kind} and adds its operations to
// vtree_mutations_total{op}. Each pass also runs inside a span named
// "vtree.<kind>" from the global tracer provider unless another tracer is
// configured.
package telemetry
