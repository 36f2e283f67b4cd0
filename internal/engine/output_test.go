package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sentra-sec/sentinel/internal/registry"
	"go.uber.org/zap"
)

// scriptedChecker fires fixed results regardless of input.
type scriptedChecker struct {
	name    string
	results []DetectionResult
}

func (c *scriptedChecker) Name() string    { return c.name }
func (c *scriptedChecker) Version() string { return "0.0.1" }

func (c *scriptedChecker) Check(_ context.Context, _, _ string) []DetectionResult {
	return c.results
}

func fireSev(name string, confidence float32, category Category, sev Severity) DetectionResult {
	return DetectionResult{
		Detected:        true,
		Producer:        name,
		ProducerVersion: "0.0.1",
		Confidence:      confidence,
		Category:        category,
		Description:     "scripted",
		Metadata:        map[string]string{MetaSeverity: string(sev)},
	}
}

func approx(got, want float32) bool {
	diff := got - want
	return diff < 1e-4 && diff > -1e-4
}

func newOutputValidator(t *testing.T, chks ...*scriptedChecker) *OutputValidator {
	t.Helper()
	reg := registry.New[Checker]()
	for _, c := range chks {
		if err := reg.Register(c.name, c.Version(), 1.0, c); err != nil {
			t.Fatalf("register %s: %v", c.name, err)
		}
	}
	return NewOutputValidator(reg, 200*time.Millisecond, DefaultOutputAggregation(), zap.NewNop())
}

func TestOutputValidator_EmptyOutputShortCircuits(t *testing.T) {
	v := newOutputValidator(t, &scriptedChecker{
		name:    "always",
		results: []DetectionResult{fireSev("always", 0.9, CategoryBypassIndicator, SeverityCritical)},
	})

	res := v.Validate(context.Background(), "  ", "some input")
	if res.SeedFailed || res.Confidence != 0 {
		t.Errorf("expected nothing-to-check result, got %+v", res)
	}
}

func TestOutputValidator_CleanOutput(t *testing.T) {
	v := newOutputValidator(t, &scriptedChecker{name: "quiet"})

	res := v.Validate(context.Background(), "Paris.", "What is the capital of France?")
	if res.SeedFailed {
		t.Error("expected seed_failed=false")
	}
	if res.SeedFailed != (len(res.FailureTypes) > 0) {
		t.Error("firing invariant violated")
	}
}

func TestOutputValidator_CooccurrenceBonus(t *testing.T) {
	v := newOutputValidator(t,
		&scriptedChecker{name: "a", results: []DetectionResult{fireSev("a", 0.6, CategoryDeceptiveContent, SeverityMedium)}},
		&scriptedChecker{name: "b", results: []DetectionResult{fireSev("b", 0.5, CategoryBehavioralFlag, SeverityMedium)}},
	)

	res := v.Validate(context.Background(), "output", "input")
	// max(0.6, 0.5) + 0.15 bonus for two agreeing categories
	if !approx(res.Confidence, 0.75) {
		t.Errorf("expected confidence 0.75, got %.2f", res.Confidence)
	}
}

func TestOutputValidator_NoBonusForSingleCategory(t *testing.T) {
	v := newOutputValidator(t,
		&scriptedChecker{name: "a", results: []DetectionResult{fireSev("a", 0.6, CategoryDeceptiveContent, SeverityMedium)}},
		&scriptedChecker{name: "b", results: []DetectionResult{fireSev("b", 0.5, CategoryDeceptiveContent, SeverityMedium)}},
	)

	res := v.Validate(context.Background(), "output", "input")
	if res.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6 with no bonus, got %.2f", res.Confidence)
	}
}

func TestOutputValidator_BonusCappedAtOne(t *testing.T) {
	v := newOutputValidator(t,
		&scriptedChecker{name: "a", results: []DetectionResult{fireSev("a", 0.95, CategoryBypassIndicator, SeverityCritical)}},
		&scriptedChecker{name: "b", results: []DetectionResult{fireSev("b", 0.9, CategoryHarmfulContent, SeverityHigh)}},
	)

	res := v.Validate(context.Background(), "output", "input")
	if res.Confidence != 1.0 {
		t.Errorf("expected confidence capped at 1.0, got %.2f", res.Confidence)
	}
}

func TestOutputValidator_SeverityPicksPrimaryCategory(t *testing.T) {
	v := newOutputValidator(t,
		&scriptedChecker{name: "louder", results: []DetectionResult{fireSev("louder", 0.9, CategoryDeceptiveContent, SeverityMedium)}},
		&scriptedChecker{name: "graver", results: []DetectionResult{fireSev("graver", 0.7, CategoryBypassIndicator, SeverityCritical)}},
	)

	res := v.Validate(context.Background(), "output", "input")
	if res.PrimaryCategory != CategoryBypassIndicator {
		t.Errorf("expected critical category to be primary, got %s", res.PrimaryCategory)
	}
}

func TestOutputValidator_THSPGateMapping(t *testing.T) {
	v := newOutputValidator(t,
		&scriptedChecker{name: "a", results: []DetectionResult{fireSev("a", 0.6, CategoryDeceptiveContent, SeverityMedium)}},
		&scriptedChecker{name: "b", results: []DetectionResult{fireSev("b", 0.7, CategoryBypassIndicator, SeverityHigh)}},
		&scriptedChecker{name: "c", results: []DetectionResult{fireSev("c", 0.5, CategoryBehavioralFlag, SeverityMedium)}},
	)

	res := v.Validate(context.Background(), "output", "input")
	want := map[THSPGate]bool{GateTruth: true, GateScope: true, GatePurpose: true}
	if len(res.GatesFailed) != len(want) {
		t.Fatalf("expected %d gates, got %v", len(want), res.GatesFailed)
	}
	for _, g := range res.GatesFailed {
		if !want[g] {
			t.Errorf("unexpected gate %s", g)
		}
	}
}
