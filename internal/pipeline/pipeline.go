// Package pipeline runs the full safety decision flow for one exchange:
// input screening, output screening, observer escalation, and the
// aggregation of whichever gates ran into one final verdict.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/observer"
	"go.uber.org/zap"
)

// ErrInputTooLarge marks an exchange rejected before any gate ran.
// Oversized input is a malformed request, not evidence of an attack.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// ErrObserverDisabled marks an escalation with no observer configured.
var ErrObserverDisabled = errors.New("observer not configured")

// Config holds the pipeline's decision thresholds and policies.
// Read-only after startup.
type Config struct {
	// BlockThreshold blocks at Gate 2 when its confidence reaches it.
	BlockThreshold float32
	// EscalateThreshold sends the exchange to the observer when Gate 2
	// confidence lands in [EscalateThreshold, BlockThreshold). Below it
	// the exchange is allowed without paying for a judge call.
	EscalateThreshold float32
	// MaxInputBytes bounds input+output size before any gate runs.
	MaxInputBytes int
	// ObserverTimeout bounds the whole Gate 3 call including retries.
	ObserverTimeout time.Duration
	Retry           observer.RetryConfig
	Fallback        observer.FallbackPolicy
	// FailClosed resolves unrecoverable internal errors to blocked.
	FailClosed bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BlockThreshold:    0.8,
		EscalateThreshold: 0.4,
		MaxInputBytes:     1 << 20,
		ObserverTimeout:   60 * time.Second,
		Retry:             observer.DefaultRetryConfig(),
		Fallback:          observer.FallbackAllowIfGate2Passed,
		FailClosed:        true,
	}
}

// Pipeline orchestrates the gates. One instance serves many concurrent
// exchanges; the only shared mutable state is the statistics counters.
type Pipeline struct {
	input    *engine.InputValidator
	output   *engine.OutputValidator
	observer observer.Observer // nil when Gate 3 is disabled
	cfg      Config
	logger   *zap.Logger
	stats    Stats
}

// New creates a pipeline. A nil observer disables Gate 3; escalations
// then resolve directly through the fallback policy.
func New(input *engine.InputValidator, output *engine.OutputValidator, obs observer.Observer, cfg Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		input:    input,
		output:   output,
		observer: obs,
		cfg:      cfg,
		logger:   logger,
	}
}

// ValidateInput exposes Gate 1 on its own.
func (p *Pipeline) ValidateInput(ctx context.Context, text string) engine.InputValidationResult {
	return p.input.Validate(ctx, text)
}

// ValidateOutput exposes Gate 2 on its own.
func (p *Pipeline) ValidateOutput(ctx context.Context, output, inputContext string) engine.OutputValidationResult {
	return p.output.Validate(ctx, output, inputContext)
}

// Decide runs the full flow for one exchange and always returns a
// terminal verdict: nothing below the aggregator surfaces to the caller
// as an error.
//
// State machine:
//
//	START → Gate1 → {BLOCKED | Gate2}
//	Gate2 → {BLOCKED (conf ≥ block) | ALLOWED (conf < escalate) | Gate3}
//	Gate3 → {BLOCKED | ALLOWED | fallback outcome}
func (p *Pipeline) Decide(ctx context.Context, input, output string) SentinelResult {
	start := time.Now()
	p.stats.decisions.Add(1)

	res := p.decide(ctx, input, output)
	res.Latency = time.Since(start)

	p.record(res)
	return res
}

func (p *Pipeline) decide(ctx context.Context, input, output string) SentinelResult {
	if len(input)+len(output) > p.cfg.MaxInputBytes {
		return ErrorResult(fmt.Errorf("%w: %d bytes", ErrInputTooLarge, len(input)+len(output)), p.cfg.FailClosed)
	}

	g1 := p.input.Validate(ctx, input)
	if g1.IsAttack {
		return BlockedByGate1(g1)
	}

	g2 := p.output.Validate(ctx, output, input)
	switch {
	case g2.Confidence >= p.cfg.BlockThreshold:
		return BlockedByGate2(g1, g2)
	case g2.Confidence < p.cfg.EscalateThreshold:
		return AllowedByGate2(g1, g2)
	}

	return p.escalate(ctx, input, output, g1, g2)
}

// escalate invokes the observer under the retry policy and resolves an
// unreachable judge through the fallback policy.
func (p *Pipeline) escalate(ctx context.Context, input, output string, g1 engine.InputValidationResult, g2 engine.OutputValidationResult) SentinelResult {
	p.stats.escalations.Add(1)

	if p.observer == nil {
		return p.fallback(g1, g2, ErrObserverDisabled)
	}

	obsCtx, cancel := context.WithTimeout(ctx, p.cfg.ObserverTimeout)
	defer cancel()

	g3, err := observer.ObserveWithRetry(obsCtx, p.observer, input, output, p.cfg.Retry, p.logger)
	if err != nil {
		p.stats.observerFailures.Add(1)
		p.logger.Warn("observer unavailable, applying fallback policy",
			zap.String("policy", p.cfg.Fallback.String()),
			zap.Error(err),
		)
		return p.fallback(g1, g2, err)
	}

	if g3.IsSafe {
		return AllowedByGate3(g1, g2, g3)
	}
	return BlockedByGate3(g1, g2, g3)
}

// fallback settles an exchange the judge never adjudicated. The failed
// observation is retained on the result so the audit trail shows why
// Gate 3 had no verdict of its own.
func (p *Pipeline) fallback(g1 engine.InputValidationResult, g2 engine.OutputValidationResult, cause error) SentinelResult {
	failed := observer.FailedObservation(cause)

	switch p.cfg.Fallback {
	case observer.FallbackAllow:
		return AllowedByGate3(g1, g2, failed)
	case observer.FallbackAllowIfGate2Passed:
		if g2.SeedFailed {
			return BlockedByGate3(g1, g2, failed)
		}
		return AllowedByGate3(g1, g2, failed)
	default: // FallbackBlock
		return BlockedByGate3(g1, g2, failed)
	}
}

func (p *Pipeline) record(res SentinelResult) {
	if res.Blocked {
		p.stats.blocked.Add(1)
	}
	switch res.DecidedBy {
	case DecidedByGate1:
		p.stats.gate1Blocks.Add(1)
	case DecidedByGate3:
		p.stats.observerCalls.Add(1)
	case DecidedByError:
		p.stats.errors.Add(1)
	}
}

// Stats returns a snapshot of the pipeline's lifetime counters.
func (p *Pipeline) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}
