package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sentra-sec/sentinel/internal/registry"
	"go.uber.org/zap"
)

// OutputValidationResult is Gate 2's aggregated output.
// Invariant: SeedFailed == (len(FailureTypes) > 0).
type OutputValidationResult struct {
	SeedFailed      bool
	FailureTypes    []Category // union of firing categories, first-seen order
	GatesFailed     []THSPGate // THSP gates derived from FailureTypes
	PrimaryCategory Category   // highest-severity firing category
	Confidence      float32
	Latency         time.Duration
	Results         []DetectionResult
}

// OutputAggregation holds the calibration constants for Gate 2's
// confidence combination. These are empirically tuned defaults, not
// invariants; both are configurable.
type OutputAggregation struct {
	// CooccurrenceBonus is added to the max confidence when two or more
	// independent categories fire together.
	CooccurrenceBonus float32
}

// DefaultOutputAggregation returns the calibration defaults.
func DefaultOutputAggregation() OutputAggregation {
	return OutputAggregation{CooccurrenceBonus: 0.15}
}

// OutputValidator orchestrates checkers against model output after
// generation. Same fan-out/fan-in shape as Gate 1, over checkers.
type OutputValidator struct {
	checkers *registry.Registry[Checker]
	timeout  time.Duration
	agg      OutputAggregation
	logger   *zap.Logger

	validated atomic.Int64
	failures  atomic.Int64
}

// NewOutputValidator creates Gate 2 over the given checker registry.
func NewOutputValidator(checkers *registry.Registry[Checker], timeout time.Duration, agg OutputAggregation, logger *zap.Logger) *OutputValidator {
	return &OutputValidator{
		checkers: checkers,
		timeout:  timeout,
		agg:      agg,
		logger:   logger,
	}
}

type checkerOutput struct {
	idx     int
	name    string
	results []DetectionResult
}

// Validate runs every enabled checker against the model output.
// inputContext may be empty; checkers that judge topical consistency use
// it. Empty output short-circuits: there is nothing to check.
func (v *OutputValidator) Validate(ctx context.Context, output, inputContext string) OutputValidationResult {
	start := time.Now()
	v.validated.Add(1)

	if strings.TrimSpace(output) == "" {
		return OutputValidationResult{Latency: time.Since(start)}
	}

	snap := v.checkers.Snapshot()
	outputs := v.fanOut(ctx, snap, output, inputContext)

	res := v.aggregate(outputs, snap)
	res.Latency = time.Since(start)
	if res.SeedFailed {
		v.failures.Add(1)
	}
	return res
}

func (v *OutputValidator) fanOut(ctx context.Context, snap []registry.Component[Checker], output, inputContext string) []checkerOutput {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	ch := make(chan checkerOutput, len(snap))
	for i, comp := range snap {
		go func(idx int, c Checker) {
			defer func() {
				if r := recover(); r != nil {
					v.logger.Warn("checker panicked, treating as non-match",
						zap.String("checker", c.Name()),
						zap.String("panic", fmt.Sprint(r)),
					)
					ch <- checkerOutput{idx: idx, name: c.Name()}
				}
			}()
			ch <- checkerOutput{idx: idx, name: c.Name(), results: c.Check(ctx, output, inputContext)}
		}(i, comp.Impl)
	}

	collected := make([]checkerOutput, 0, len(snap))
	remaining := len(snap)
	for remaining > 0 {
		select {
		case out := <-ch:
			collected = append(collected, out)
			remaining--
		case <-ctx.Done():
			v.logger.Warn("checker timeout exceeded, aggregating partial results",
				zap.Duration("timeout", v.timeout),
			)
			remaining = 0
		}
	}
	return collected
}

// aggregate folds checker outputs into the gate result. Confidence is the
// max over firing checkers plus the co-occurrence bonus when two or more
// distinct categories agree; a single high-confidence signal is never
// diluted by averaging. The primary category is the firing result with
// the highest severity rank, ties broken by confidence.
func (v *OutputValidator) aggregate(outputs []checkerOutput, snap []registry.Component[Checker]) OutputValidationResult {
	ordered := make([]checkerOutput, len(snap))
	for _, out := range outputs {
		ordered[out.idx] = out
	}

	var res OutputValidationResult
	seen := make(map[Category]bool)
	seenGates := make(map[THSPGate]bool)

	var primarySeverity, primaryConfidence = -1, float32(0)

	for i, out := range ordered {
		for _, dr := range out.results {
			if !dr.Detected {
				continue
			}
			conf := weighted(dr.Confidence, snap[i].Weight)
			if conf > res.Confidence {
				res.Confidence = conf
			}
			if !seen[dr.Category] {
				seen[dr.Category] = true
				res.FailureTypes = append(res.FailureTypes, dr.Category)
				if g := THSPGateFor(dr.Category); !seenGates[g] {
					seenGates[g] = true
					res.GatesFailed = append(res.GatesFailed, g)
				}
			}
			if rank := dr.Severity().Rank(); rank > primarySeverity ||
				(rank == primarySeverity && conf > primaryConfidence) {
				primarySeverity = rank
				primaryConfidence = conf
				res.PrimaryCategory = dr.Category
			}
			res.Results = append(res.Results, dr)
		}
	}

	if len(res.FailureTypes) >= 2 {
		res.Confidence += v.agg.CooccurrenceBonus
		if res.Confidence > 1 {
			res.Confidence = 1
		}
	}

	res.SeedFailed = len(res.FailureTypes) > 0
	return res
}

// Stats reports the validator's lifetime counters.
func (v *OutputValidator) Stats() (validated, failures int64) {
	return v.validated.Load(), v.failures.Load()
}
