package pipeline

import (
	"time"

	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/observer"
)

// DecidedBy identifies which gate settled an exchange.
type DecidedBy string

const (
	DecidedByGate1 DecidedBy = "gate1"
	DecidedByGate2 DecidedBy = "gate2"
	DecidedByGate3 DecidedBy = "gate3"
	DecidedByError DecidedBy = "error"
)

// Evidence is the closed, versioned view of one firing detection carried
// across the aggregator boundary. Open metadata maps stay at the
// detector/checker edge; downstream consumers get typed fields only.
type Evidence struct {
	Producer        string
	ProducerVersion string
	Category        engine.Category
	Severity        engine.Severity
	Confidence      float32
	Description     string
	Snippet         string
}

// SentinelResult is the final, explainable verdict for one exchange.
// Exactly one of Blocked/Allowed is true; this is fixed at construction
// by the factory functions and cannot be violated by callers.
type SentinelResult struct {
	Blocked        bool
	Allowed        bool
	DecidedBy      DecidedBy
	Confidence     float32
	Reasoning      string
	ViolatedGates  []engine.THSPGate
	Evidence       []Evidence
	Latency        time.Duration
	Gate3WasCalled bool

	// Gate results retained for the audit trail. A populated earlier-gate
	// reference is legitimate on any later-gate outcome.
	Gate1Result *engine.InputValidationResult
	Gate2Result *engine.OutputValidationResult
	Gate3Result *observer.ObservationResult

	// Err is set only on DecidedByError outcomes.
	Err error
}

// BlockedByGate1 records an input-screening block. The observer was never
// consulted.
func BlockedByGate1(g1 engine.InputValidationResult) SentinelResult {
	return SentinelResult{
		Blocked:       true,
		DecidedBy:     DecidedByGate1,
		Confidence:    g1.Confidence,
		Reasoning:     "input screening detected an attack pattern",
		ViolatedGates: gatesFor(g1.AttackTypes),
		Evidence:      evidenceFrom(g1.Results),
		Gate1Result:   &g1,
	}
}

// BlockedByGate2 records an output-screening block above the block
// threshold.
func BlockedByGate2(g1 engine.InputValidationResult, g2 engine.OutputValidationResult) SentinelResult {
	return SentinelResult{
		Blocked:       true,
		DecidedBy:     DecidedByGate2,
		Confidence:    g2.Confidence,
		Reasoning:     "output screening found that safety measures failed",
		ViolatedGates: g2.GatesFailed,
		Evidence:      evidenceFrom(g2.Results),
		Gate1Result:   &g1,
		Gate2Result:   &g2,
	}
}

// AllowedByGate2 records a clean exchange that never needed the observer.
func AllowedByGate2(g1 engine.InputValidationResult, g2 engine.OutputValidationResult) SentinelResult {
	return SentinelResult{
		Allowed:     true,
		DecidedBy:   DecidedByGate2,
		Confidence:  1 - g2.Confidence,
		Reasoning:   "heuristic gates found no safety failure",
		Gate1Result: &g1,
		Gate2Result: &g2,
	}
}

// BlockedByGate3 records an observer block, including fallback blocks
// when the judge was unreachable.
func BlockedByGate3(g1 engine.InputValidationResult, g2 engine.OutputValidationResult, g3 observer.ObservationResult) SentinelResult {
	return SentinelResult{
		Blocked:        true,
		DecidedBy:      DecidedByGate3,
		Confidence:     g2.Confidence,
		Reasoning:      g3.Reasoning,
		ViolatedGates:  g2.GatesFailed,
		Evidence:       evidenceFrom(g2.Results),
		Gate1Result:    &g1,
		Gate2Result:    &g2,
		Gate3Result:    &g3,
		Gate3WasCalled: true,
	}
}

// AllowedByGate3 records an observer acquittal, including fallback allows.
func AllowedByGate3(g1 engine.InputValidationResult, g2 engine.OutputValidationResult, g3 observer.ObservationResult) SentinelResult {
	return SentinelResult{
		Allowed:        true,
		DecidedBy:      DecidedByGate3,
		Confidence:     1 - g2.Confidence,
		Reasoning:      g3.Reasoning,
		Gate1Result:    &g1,
		Gate2Result:    &g2,
		Gate3Result:    &g3,
		Gate3WasCalled: true,
	}
}

// ErrorResult records an unrecoverable internal failure, resolved to
// blocked or allowed by the fail-closed setting.
func ErrorResult(err error, failClosed bool) SentinelResult {
	return SentinelResult{
		Blocked:   failClosed,
		Allowed:   !failClosed,
		DecidedBy: DecidedByError,
		Reasoning: "internal error: " + err.Error(),
		Err:       err,
	}
}

func gatesFor(categories []engine.Category) []engine.THSPGate {
	seen := make(map[engine.THSPGate]bool)
	var gates []engine.THSPGate
	for _, c := range categories {
		if g := engine.THSPGateFor(c); !seen[g] {
			seen[g] = true
			gates = append(gates, g)
		}
	}
	return gates
}

func evidenceFrom(results []engine.DetectionResult) []Evidence {
	if len(results) == 0 {
		return nil
	}
	ev := make([]Evidence, 0, len(results))
	for _, r := range results {
		ev = append(ev, Evidence{
			Producer:        r.Producer,
			ProducerVersion: r.ProducerVersion,
			Category:        r.Category,
			Severity:        r.Severity(),
			Confidence:      r.Confidence,
			Description:     r.Description,
			Snippet:         r.Evidence,
		})
	}
	return ev
}
