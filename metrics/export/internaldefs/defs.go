package internaldefs

import (
	goCoord "github.com/MrEthical07/goCoord"
)

// CounterDef binds a counter to its exported name.
type CounterDef struct {
	ID   goCoord.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram to its exported name. Values are in seconds.
type HistogramDef struct {
	ID   goCoord.MetricID
	Name string
	Help string
}

// BucketCount matches the Coordinator's fixed histogram layout.
const BucketCount = 8

var CounterDefs = []CounterDef{
	{ID: goCoord.MetricRateLimitAllowed, Name: "gocoord_rate_limit_allowed_total", Help: "Requests admitted by a token bucket."},
	{ID: goCoord.MetricRateLimitDenied, Name: "gocoord_rate_limit_denied_total", Help: "Requests denied by a token bucket, including denials caused by cache failures."},
	{ID: goCoord.MetricRateLimitDeleted, Name: "gocoord_rate_limit_deleted_total", Help: "Rate-limit keys removed by Delete."},
	{ID: goCoord.MetricRateLimitReset, Name: "gocoord_rate_limit_reset_total", Help: "Token buckets cleared by Reset."},
	{ID: goCoord.MetricValidationSet, Name: "gocoord_validation_set_total", Help: "Validation records written with an expiry."},
	{ID: goCoord.MetricUnrepeatablePassed, Name: "gocoord_unrepeatable_passed_total", Help: "First presentations of an unrepeatable key."},
	{ID: goCoord.MetricUnrepeatableRejected, Name: "gocoord_unrepeatable_rejected_total", Help: "Repeated presentations of an unrepeatable key."},
	{ID: goCoord.MetricRepeatablePassed, Name: "gocoord_repeatable_passed_total", Help: "Repeatable gate calls that were allowed."},
	{ID: goCoord.MetricRepeatableRejected, Name: "gocoord_repeatable_rejected_total", Help: "Repeatable gate calls rejected after success, timeout or by another holder."},
	{ID: goCoord.MetricRepeatableSucceeded, Name: "gocoord_repeatable_succeeded_total", Help: "Repeatable gates marked succeeded."},
	{ID: goCoord.MetricValueMatched, Name: "gocoord_value_matched_total", Help: "Record reads that matched the expected value."},
	{ID: goCoord.MetricValueMismatched, Name: "gocoord_value_mismatched_total", Help: "Record reads that were absent or held another value."},
	{ID: goCoord.MetricValidationDeleted, Name: "gocoord_validation_deleted_total", Help: "Validation records removed by Delete."},
	{ID: goCoord.MetricInvalidArgument, Name: "gocoord_invalid_argument_total", Help: "Calls rejected before any round trip."},
	{ID: goCoord.MetricCacheFailure, Name: "gocoord_cache_failure_total", Help: "Operations that failed at the cache layer."},
}

var HistogramDefs = []HistogramDef{
	{ID: goCoord.MetricScriptLatency, Name: "gocoord_cache_latency_seconds", Help: "Round-trip latency of coordination operations."},
}

// HistogramBounds are the Prometheus le labels, in bucket order.
var HistogramBounds = [BucketCount]string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names per-bucket instruments where labels are not used.
var HistogramBoundSuffix = [BucketCount]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// Cumulative converts raw per-bucket counts into cumulative counts. Missing
// trailing buckets count as zero.
func Cumulative(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < BucketCount; i++ {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}
