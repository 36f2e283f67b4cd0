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

// InputValidationResult is Gate 1's aggregated output.
// Invariant: IsAttack == (len(AttackTypes) > 0).
type InputValidationResult struct {
	IsAttack    bool
	AttackTypes []Category // union of firing categories, first-seen order
	Confidence  float32    // max over firing detectors, never averaged
	Violations  []string   // human-readable matches in detector registration order
	Latency     time.Duration
	Results     []DetectionResult // firing results, for the audit trail
}

// InputValidator orchestrates detectors against user input before it
// reaches the model. Pure fan-out/fan-in: detectors never see each
// other's output and run concurrently.
type InputValidator struct {
	detectors *registry.Registry[Detector]
	timeout   time.Duration
	logger    *zap.Logger

	validated atomic.Int64
	attacks   atomic.Int64
}

// NewInputValidator creates Gate 1 over the given detector registry.
func NewInputValidator(detectors *registry.Registry[Detector], timeout time.Duration, logger *zap.Logger) *InputValidator {
	return &InputValidator{
		detectors: detectors,
		timeout:   timeout,
		logger:    logger,
	}
}

// detectorOutput holds one detector's firing results, indexed so the
// aggregate can restore registration order after the parallel fan-out.
type detectorOutput struct {
	idx     int
	name    string
	results []DetectionResult
}

// Validate runs every enabled detector against the text and aggregates
// their evidence. Empty or whitespace-only input short-circuits to a
// trivially safe result without invoking any detector.
func (v *InputValidator) Validate(ctx context.Context, text string) InputValidationResult {
	start := time.Now()
	v.validated.Add(1)

	if strings.TrimSpace(text) == "" {
		return InputValidationResult{Latency: time.Since(start)}
	}

	snap := v.detectors.Snapshot()
	outputs := v.fanOut(ctx, snap, text)

	res := aggregateInput(outputs, snap)
	res.Latency = time.Since(start)
	if res.IsAttack {
		v.attacks.Add(1)
	}
	return res
}

// fanOut runs all detectors concurrently and collects whatever finishes
// before the gate timeout. A detector that panics or overruns the deadline
// is treated as a non-match for that detector only.
func (v *InputValidator) fanOut(ctx context.Context, snap []registry.Component[Detector], text string) []detectorOutput {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	ch := make(chan detectorOutput, len(snap))
	for i, comp := range snap {
		go func(idx int, d Detector) {
			defer func() {
				if r := recover(); r != nil {
					v.logger.Warn("detector panicked, treating as non-match",
						zap.String("detector", d.Name()),
						zap.String("panic", fmt.Sprint(r)),
					)
					ch <- detectorOutput{idx: idx, name: d.Name()}
				}
			}()
			ch <- detectorOutput{idx: idx, name: d.Name(), results: d.Detect(ctx, text)}
		}(i, comp.Impl)
	}

	collected := make([]detectorOutput, 0, len(snap))
	remaining := len(snap)
	for remaining > 0 {
		select {
		case out := <-ch:
			collected = append(collected, out)
			remaining--
		case <-ctx.Done():
			v.logger.Warn("detector timeout exceeded, aggregating partial results",
				zap.Duration("timeout", v.timeout),
			)
			remaining = 0
		}
	}
	return collected
}

// aggregateInput folds detector outputs into the gate result. Outputs are
// walked in registration order so Violations is reproducible regardless of
// goroutine scheduling.
func aggregateInput(outputs []detectorOutput, snap []registry.Component[Detector]) InputValidationResult {
	ordered := make([]detectorOutput, len(snap))
	for _, out := range outputs {
		ordered[out.idx] = out
	}

	var res InputValidationResult
	seen := make(map[Category]bool)

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
				res.AttackTypes = append(res.AttackTypes, dr.Category)
			}
			res.Violations = append(res.Violations, dr.Producer+": "+dr.Description)
			res.Results = append(res.Results, dr)
		}
	}

	res.IsAttack = len(res.AttackTypes) > 0
	return res
}

// Stats reports the validator's lifetime counters.
func (v *InputValidator) Stats() (validated, attacks int64) {
	return v.validated.Load(), v.attacks.Load()
}

// weighted scales a detection confidence by the component's registry
// weight, capped at 1.0.
func weighted(confidence float32, weight float64) float32 {
	c := confidence * float32(weight)
	if c > 1 {
		return 1
	}
	return c
}
