// Package checkers holds the built-in Gate-2 rule families. Each checker
// scans model output for signs that an earlier safety measure failed, and
// tags every firing result with a severity used for primary-category
// selection downstream.
package checkers

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

// rule is one pre-compiled output pattern with its calibration.
type rule struct {
	re          *regexp.Regexp
	confidence  float32
	severity    engine.Severity
	description string
}

// scan evaluates all rules against the model output, returning one firing
// result per match. Severity rides in the result metadata.
func scan(ctx context.Context, rules []rule, output, producer, version string, category engine.Category) []engine.DetectionResult {
	var results []engine.DetectionResult
	for _, r := range rules {
		if ctx.Err() != nil {
			break
		}
		loc := r.re.FindStringIndex(output)
		if loc == nil {
			continue
		}
		results = append(results, firing(r, output, loc, producer, version, category))
	}
	return results
}

func firing(r rule, output string, loc []int, producer, version string, category engine.Category) engine.DetectionResult {
	return engine.DetectionResult{
		Detected:        true,
		Producer:        producer,
		ProducerVersion: version,
		Confidence:      r.confidence,
		Category:        category,
		Description:     r.description,
		Evidence:        snippet(output, loc[0], loc[1]),
		Metadata: map[string]string{
			engine.MetaSeverity: string(r.severity),
		},
	}
}

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
