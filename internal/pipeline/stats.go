package pipeline

import "sync/atomic"

// Stats holds the pipeline's write-only lifetime counters. Atomic
// increments keep concurrent exchanges race-free without locks.
type Stats struct {
	decisions        atomic.Int64
	blocked          atomic.Int64
	gate1Blocks      atomic.Int64
	escalations      atomic.Int64
	observerCalls    atomic.Int64
	observerFailures atomic.Int64
	errors           atomic.Int64
}

// StatsSnapshot is a point-in-time copy for observability endpoints.
type StatsSnapshot struct {
	Decisions        int64 `json:"decisions"`
	Blocked          int64 `json:"blocked"`
	Gate1Blocks      int64 `json:"gate1_blocks"`
	Escalations      int64 `json:"escalations"`
	ObserverCalls    int64 `json:"observer_calls"`
	ObserverFailures int64 `json:"observer_failures"`
	Errors           int64 `json:"errors"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Decisions:        s.decisions.Load(),
		Blocked:          s.blocked.Load(),
		Gate1Blocks:      s.gate1Blocks.Load(),
		Escalations:      s.escalations.Load(),
		ObserverCalls:    s.observerCalls.Load(),
		ObserverFailures: s.observerFailures.Load(),
		Errors:           s.errors.Load(),
	}
}
