package engine

import "context"

// Detector is the interface every input-side plugin must implement.
// A detector answers "does this user input look like an attack?".
// Implementations must respect context deadlines and return quickly;
// they never perform network I/O.
type Detector interface {
	// Name returns the detector's unique identifier (e.g. "prompt_injection").
	Name() string

	// Version returns the detector's rule-set version (semantic string).
	Version() string

	// Detect scans the text and returns zero or more firing results.
	// A nil or empty slice means nothing was detected.
	Detect(ctx context.Context, text string) []DetectionResult
}

// Checker is the interface every output-side plugin must implement.
// A checker answers "does this model output show that prior safety
// measures failed?". The input context is optional; checkers that judge
// topical consistency use it, others ignore it.
type Checker interface {
	Name() string
	Version() string

	// Check scans the model output, optionally against the original input.
	Check(ctx context.Context, output, inputContext string) []DetectionResult
}
