// Package detectors holds the built-in Gate-1 rule families. Each detector
// scans user input against a pre-compiled pattern set and emits one
// detection result per matching rule.
package detectors

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

// rule is one pre-compiled pattern with its calibration. Patterns are
// compiled once at startup, never during a request.
type rule struct {
	re          *regexp.Regexp
	confidence  float32
	description string
}

// scan evaluates all rules against the text, returning one firing result
// per match with a bounded evidence snippet. Stops early when the context
// is cancelled; whatever matched so far still counts.
func scan(ctx context.Context, rules []rule, text, producer, version string, category engine.Category) []engine.DetectionResult {
	var results []engine.DetectionResult
	for _, r := range rules {
		if ctx.Err() != nil {
			break
		}
		loc := r.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		results = append(results, engine.DetectionResult{
			Detected:        true,
			Producer:        producer,
			ProducerVersion: version,
			Confidence:      r.confidence,
			Category:        category,
			Description:     r.description,
			Evidence:        snippet(text, loc[0], loc[1]),
		})
	}
	return results
}

// snippet returns the matched region with a little surrounding context,
// clipped to whole bytes of the original string.
func snippet(text string, start, end int) string {
	const margin = 20
	s := start - margin
	if s < 0 {
		s = 0
	}
	e := end + margin
	if e > len(text) {
		e = len(text)
	}
	return text[s:e]
}
