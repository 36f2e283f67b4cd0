package api

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/sentra-sec/sentinel/internal/pipeline"
	"github.com/sentra-sec/sentinel/internal/storage"
)

// writeDecisionEvent builds a DecisionEvent and fires it to the async
// event writer. Full payloads never leave the process; only hashes and
// short previews are persisted.
func (d *Dependencies) writeDecisionEvent(requestID, projectID, input, output string, res pipeline.SentinelResult) {
	gates := make([]string, 0, len(res.ViolatedGates))
	for _, g := range res.ViolatedGates {
		gates = append(gates, string(g))
	}

	categories := make([]string, 0, len(res.Evidence))
	producers := make([]string, 0, len(res.Evidence))
	for _, ev := range res.Evidence {
		categories = append(categories, string(ev.Category))
		producers = append(producers, ev.Producer)
	}

	event := &storage.DecisionEvent{
		RequestID:      requestID,
		ProjectID:      projectID,
		Timestamp:      time.Now(),
		DecidedBy:      string(res.DecidedBy),
		Blocked:        res.Blocked,
		Confidence:     res.Confidence,
		Reasoning:      res.Reasoning,
		ViolatedGates:  gates,
		InputPreview:   storage.TruncatePreview(input, storage.PreviewLength),
		InputHash:      hashPayload(input),
		InputSize:      uint32(len(input)),
		OutputPreview:  storage.TruncatePreview(output, storage.PreviewLength),
		OutputHash:     hashPayload(output),
		OutputSize:     uint32(len(output)),
		Gate3WasCalled: res.Gate3WasCalled,
		Categories:     categories,
		Producers:      producers,
		LatencyMs:      float32(res.Latency) / float32(time.Millisecond),
	}

	if res.Gate1Result != nil {
		event.Gate1Confidence = res.Gate1Result.Confidence
	}
	if res.Gate2Result != nil {
		event.Gate2Confidence = res.Gate2Result.Confidence
	}
	if res.Gate3Result != nil {
		event.ObserverLatency = res.Gate3Result.Latency
	}

	d.Writer.Write(event)
}

func hashPayload(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
