package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sentra-sec/sentinel/internal/registry"
	"go.uber.org/zap"
)

// scriptedDetector fires a fixed set of results, optionally misbehaving.
type scriptedDetector struct {
	name    string
	results []DetectionResult
	panics  bool
	sleep   time.Duration
}

func (d *scriptedDetector) Name() string    { return d.name }
func (d *scriptedDetector) Version() string { return "0.0.1" }

func (d *scriptedDetector) Detect(ctx context.Context, _ string) []DetectionResult {
	if d.panics {
		panic("scripted failure")
	}
	if d.sleep > 0 {
		select {
		case <-time.After(d.sleep):
		case <-ctx.Done():
			return nil
		}
	}
	return d.results
}

func fire(name string, confidence float32, category Category, desc string) DetectionResult {
	return DetectionResult{
		Detected:        true,
		Producer:        name,
		ProducerVersion: "0.0.1",
		Confidence:      confidence,
		Category:        category,
		Description:     desc,
	}
}

func newInputValidator(t *testing.T, dets ...*scriptedDetector) *InputValidator {
	t.Helper()
	reg := registry.New[Detector]()
	for _, d := range dets {
		if err := reg.Register(d.name, d.Version(), 1.0, d); err != nil {
			t.Fatalf("register %s: %v", d.name, err)
		}
	}
	return NewInputValidator(reg, 200*time.Millisecond, zap.NewNop())
}

func TestInputValidator_NoDetections(t *testing.T) {
	v := newInputValidator(t,
		&scriptedDetector{name: "a"},
		&scriptedDetector{name: "b"},
	)

	res := v.Validate(context.Background(), "What is the capital of France?")
	if res.IsAttack {
		t.Error("expected is_attack=false")
	}
	if res.Confidence != 0 {
		t.Errorf("expected confidence 0, got %.2f", res.Confidence)
	}
	if len(res.AttackTypes) != 0 || len(res.Violations) != 0 {
		t.Errorf("expected empty aggregates, got %+v", res)
	}
}

func TestInputValidator_EmptyInputShortCircuits(t *testing.T) {
	v := newInputValidator(t, &scriptedDetector{
		name:    "always",
		results: []DetectionResult{fire("always", 0.99, CategoryPromptInjection, "x")},
	})

	for _, text := range []string{"", "   ", "\n\t "} {
		res := v.Validate(context.Background(), text)
		if res.IsAttack || res.Confidence != 0 {
			t.Errorf("expected trivially safe result for %q, got %+v", text, res)
		}
	}
}

func TestInputValidator_MaxConfidenceNotAveraged(t *testing.T) {
	v := newInputValidator(t,
		&scriptedDetector{name: "weak1", results: []DetectionResult{fire("weak1", 0.2, CategoryJailbreak, "w1")}},
		&scriptedDetector{name: "strong", results: []DetectionResult{fire("strong", 0.95, CategoryPromptInjection, "s")}},
		&scriptedDetector{name: "weak2", results: []DetectionResult{fire("weak2", 0.1, CategoryPIILeakage, "w2")}},
	)

	res := v.Validate(context.Background(), "anything")
	if !res.IsAttack {
		t.Fatal("expected is_attack=true")
	}
	if res.Confidence != 0.95 {
		t.Errorf("expected max confidence 0.95, got %.2f", res.Confidence)
	}
	if len(res.AttackTypes) != 3 {
		t.Errorf("expected 3 attack types, got %v", res.AttackTypes)
	}
}

func TestInputValidator_ViolationsInRegistrationOrder(t *testing.T) {
	// Detector "late" finishes last even though registered first; its
	// violations must still come first.
	v := newInputValidator(t,
		&scriptedDetector{
			name:    "late",
			sleep:   50 * time.Millisecond,
			results: []DetectionResult{fire("late", 0.5, CategoryJailbreak, "slow match")},
		},
		&scriptedDetector{
			name:    "early",
			results: []DetectionResult{fire("early", 0.6, CategoryPromptInjection, "fast match")},
		},
	)

	for i := 0; i < 5; i++ {
		res := v.Validate(context.Background(), "anything")
		if len(res.Violations) != 2 {
			t.Fatalf("expected 2 violations, got %v", res.Violations)
		}
		if res.Violations[0] != "late: slow match" || res.Violations[1] != "early: fast match" {
			t.Errorf("violations out of registration order: %v", res.Violations)
		}
	}
}

func TestInputValidator_PanickingDetectorIsNonMatch(t *testing.T) {
	v := newInputValidator(t,
		&scriptedDetector{name: "broken", panics: true},
		&scriptedDetector{name: "ok", results: []DetectionResult{fire("ok", 0.8, CategoryPromptInjection, "m")}},
	)

	res := v.Validate(context.Background(), "anything")
	if !res.IsAttack {
		t.Error("expected the healthy detector to still decide the gate")
	}
	if res.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %.2f", res.Confidence)
	}
}

func TestInputValidator_TimeoutReturnsPartialResults(t *testing.T) {
	reg := registry.New[Detector]()
	_ = reg.Register("fast", "0.0.1", 1.0, &scriptedDetector{
		name:    "fast",
		results: []DetectionResult{fire("fast", 0.7, CategoryJailbreak, "m")},
	})
	_ = reg.Register("stuck", "0.0.1", 1.0, &scriptedDetector{
		name:  "stuck",
		sleep: time.Second,
	})
	v := NewInputValidator(reg, 50*time.Millisecond, zap.NewNop())

	start := time.Now()
	res := v.Validate(context.Background(), "anything")
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("validate did not respect gate timeout, took %v", elapsed)
	}
	if !res.IsAttack || res.Confidence != 0.7 {
		t.Errorf("expected partial result from the fast detector, got %+v", res)
	}
}

func TestInputValidator_WeightScalesConfidence(t *testing.T) {
	reg := registry.New[Detector]()
	_ = reg.Register("half", "0.0.1", 0.5, &scriptedDetector{
		name:    "half",
		results: []DetectionResult{fire("half", 0.8, CategoryJailbreak, "m")},
	})
	v := NewInputValidator(reg, 200*time.Millisecond, zap.NewNop())

	res := v.Validate(context.Background(), "anything")
	if res.Confidence != 0.4 {
		t.Errorf("expected weighted confidence 0.4, got %.2f", res.Confidence)
	}
}

func TestInputValidator_InvariantAttackIffTypes(t *testing.T) {
	v := newInputValidator(t,
		&scriptedDetector{name: "a", results: []DetectionResult{fire("a", 0.9, CategoryPromptInjection, "m")}},
	)
	res := v.Validate(context.Background(), "anything")
	if res.IsAttack != (len(res.AttackTypes) > 0) {
		t.Errorf("invariant violated: is_attack=%v attack_types=%v", res.IsAttack, res.AttackTypes)
	}
}
