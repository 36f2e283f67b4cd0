package checkers

import "github.com/sentra-sec/sentinel/internal/engine"

// Defaults returns the built-in checker set in its canonical
// registration order.
func Defaults() []engine.Checker {
	return []engine.Checker{
		NewBypassChecker(),
		NewComplianceChecker(),
		NewDeceptionChecker(),
		NewHarmfulContentChecker(),
		NewBehaviorChecker(),
	}
}
