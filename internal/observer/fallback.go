package observer

import "fmt"

// FallbackPolicy selects what happens when the judge model cannot be
// reached after all retries. This is the single biggest lever on the
// availability/security trade-off, so it is a first-class configuration
// value rather than a hidden default.
type FallbackPolicy int

const (
	// FallbackBlock treats an unreachable judge as unsafe. Maximizes
	// security; a judge outage becomes a service outage.
	FallbackBlock FallbackPolicy = iota

	// FallbackAllowIfGate2Passed defers to whether Gate 2 already found
	// no issues. The balanced default.
	FallbackAllowIfGate2Passed

	// FallbackAllow treats an unreachable judge as safe. Maximizes
	// availability; the observer becomes best-effort only.
	FallbackAllow
)

// String returns the configuration name of the policy.
func (p FallbackPolicy) String() string {
	switch p {
	case FallbackBlock:
		return "block"
	case FallbackAllowIfGate2Passed:
		return "allow_if_gate2_passed"
	case FallbackAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// ParseFallbackPolicy parses a configuration string.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch s {
	case "block":
		return FallbackBlock, nil
	case "allow_if_gate2_passed", "":
		return FallbackAllowIfGate2Passed, nil
	case "allow":
		return FallbackAllow, nil
	default:
		return FallbackBlock, fmt.Errorf("unknown fallback policy %q", s)
	}
}
