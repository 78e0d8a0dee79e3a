// Package prometheus renders Coordinator metrics in the Prometheus text
// exposition format. Counters are named gocoord_*_total; the single histogram
// is gocoord_cache_latency_seconds.
//
// The exporter never touches a global registry; callers mount [Exporter.Handler].
package prometheus
