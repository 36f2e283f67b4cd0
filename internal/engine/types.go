package engine

// Category classifies the kind of safety failure a detection describes.
// The vocabulary is closed: detectors and checkers must tag results with
// one of these values so downstream aggregation never sees free-form tags.
type Category string

const (
	CategoryPromptInjection  Category = "prompt_injection"
	CategoryJailbreak        Category = "jailbreak"
	CategoryBypassIndicator  Category = "bypass_indicator"
	CategoryDeceptiveContent Category = "deceptive_content"
	CategoryHarmfulContent   Category = "harmful_content"
	CategoryPolicyViolation  Category = "policy_violation"
	CategoryBehavioralFlag   Category = "behavioral_flag"
	CategoryPIILeakage       Category = "pii_leakage"
)

// THSPGate names one of the four reporting dimensions a failure category
// maps onto. THSP gates are reporting metadata, never control flow.
type THSPGate string

const (
	GateTruth   THSPGate = "truth"
	GateHarm    THSPGate = "harm"
	GateScope   THSPGate = "scope"
	GatePurpose THSPGate = "purpose"
)

// THSPGateFor maps a failure category to its reporting gate.
func THSPGateFor(c Category) THSPGate {
	switch c {
	case CategoryDeceptiveContent:
		return GateTruth
	case CategoryHarmfulContent, CategoryPIILeakage:
		return GateHarm
	case CategoryPromptInjection, CategoryJailbreak, CategoryBypassIndicator:
		return GateScope
	default:
		return GatePurpose
	}
}

// Severity ranks how serious a single detection is. Gate 2 uses it to pick
// the primary reported category when several checkers fire at once.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an ordering value for severity comparison (critical highest).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MetaSeverity is the metadata key carrying a result's Severity.
const MetaSeverity = "severity"

// DetectionResult is the atomic evidence unit produced by one detector or
// checker run. Immutable once created.
type DetectionResult struct {
	Detected        bool
	Producer        string
	ProducerVersion string
	Confidence      float32 // 0.0 – 1.0
	Category        Category
	Description     string
	Evidence        string            // optional matched snippet
	Metadata        map[string]string // category-specific detail (severity, ...)
}

// NoDetection is the canonical "nothing detected" result for a producer.
func NoDetection(producer, version string) DetectionResult {
	return DetectionResult{
		Detected:        false,
		Producer:        producer,
		ProducerVersion: version,
	}
}

// Severity reads the result's severity from metadata, defaulting to medium
// so an untagged firing result still participates in primary-category
// selection.
func (r DetectionResult) Severity() Severity {
	if r.Metadata == nil {
		return SeverityMedium
	}
	if s, ok := r.Metadata[MetaSeverity]; ok {
		return Severity(s)
	}
	return SeverityMedium
}
