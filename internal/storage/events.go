package storage

import "time"

// EventWriter is the sink for decision audit events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *DecisionEvent)
	Close()
}

// DecisionEvent is one final verdict persisted for audit and analytics.
// Payloads are stored as a hash plus a short preview, never in full.
type DecisionEvent struct {
	RequestID       string
	ProjectID       string
	Timestamp       time.Time
	DecidedBy       string
	Blocked         bool
	Confidence      float32
	Reasoning       string
	ViolatedGates   []string
	InputPreview    string
	InputHash       string
	InputSize       uint32
	OutputPreview   string
	OutputHash      string
	OutputSize      uint32
	Gate1Confidence float32
	Gate2Confidence float32
	Gate3WasCalled  bool
	Categories      []string
	Producers       []string
	ObserverLatency time.Duration
	LatencyMs       float32
}

// PreviewLength is the max chars stored in the payload previews.
const PreviewLength = 500

// TruncatePreview returns the first N characters (runes) of a payload for
// preview storage. It never splits a multi-byte UTF-8 character.
func TruncatePreview(payload string, maxLen int) string {
	runes := []rune(payload)
	if len(runes) <= maxLen {
		return payload
	}
	return string(runes[:maxLen])
}
