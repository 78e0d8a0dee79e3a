package goCoord

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCoord/observe"
)

// Outcome classifies a decision for audit consumers.
type Outcome string

const (
	OutcomeAllowed         Outcome = "allowed"
	OutcomeDenied          Outcome = "denied"
	OutcomeInvalidArgument Outcome = "invalid_argument"
	OutcomeCacheFailure    Outcome = "cache_failure"
)

func outcomeOf(ev observe.Event) Outcome {
	switch {
	case ev.Err == nil && ev.Allowed:
		return OutcomeAllowed
	case ev.Err == nil:
		return OutcomeDenied
	case IsCacheFailure(ev.Err):
		return OutcomeCacheFailure
	default:
		return OutcomeInvalidArgument
	}
}

// AuditEvent records one coordination decision. Values presented to the
// validator are never recorded; keys only when Audit.IncludeKeys is set.
type AuditEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Op        observe.Op `json:"op"`
	Outcome   Outcome    `json:"outcome"`
	Allowed   bool       `json:"allowed"`
	Key       string     `json:"key,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	IP        string     `json:"ip,omitempty"`
	Error     string     `json:"error,omitempty"`
	LatencyUS int64      `json:"latency_us,omitempty"`
}

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink forwards events to a buffered channel the caller drains. When
// the caller falls behind, events are dropped and counted rather than
// stalling the dispatcher.
type ChannelSink struct {
	events  chan AuditEvent
	dropped atomic.Uint64
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan AuditEvent, buffer)}
}

func (s *ChannelSink) Emit(_ context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// Dropped returns how many events found the channel full.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

// JSONWriterSink writes one JSON object per line, each in a single Write.
type JSONWriterSink struct {
	mu     sync.Mutex
	enc    *json.Encoder
	failed atomic.Uint64
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		return &JSONWriterSink{}
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.enc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(event); err != nil {
		s.failed.Add(1)
	}
}

// Failed returns how many events could not be written.
func (s *JSONWriterSink) Failed() uint64 {
	return s.failed.Load()
}
