package detectors

import "github.com/sentra-sec/sentinel/internal/engine"

// Defaults returns the built-in detector set in its canonical
// registration order.
func Defaults() []engine.Detector {
	return []engine.Detector{
		NewPromptInjectionDetector(),
		NewJailbreakDetector(),
		NewPIIDetector(),
	}
}
