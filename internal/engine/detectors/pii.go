package detectors

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

var piiRules = []rule{
	{regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), 0.90, "US social security number"},
	{regexp.MustCompile(`\b(?:4\d{3}|5[1-5]\d{2}|3[47]\d{2}|6011)[ -]?\d{4}[ -]?\d{4}[ -]?\d{3,4}\b`), 0.85, "payment card number"},
	{regexp.MustCompile(`(?i)\b(sk|pk)[-_](live|test|proj)[-_][a-z0-9]{16,}\b`), 0.95, "API secret key"},
	{regexp.MustCompile(`(?i)-----BEGIN\s+(RSA|EC|OPENSSH)?\s*PRIVATE\s+KEY-----`), 0.95, "private key material"},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[:=]\s*\S{6,}`), 0.75, "inline credential"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), 0.50, "email address"},
}

// PIIDetector scans user input for personal data and credential material
// that should not be forwarded to the model.
type PIIDetector struct{}

func NewPIIDetector() *PIIDetector {
	return &PIIDetector{}
}

func (d *PIIDetector) Name() string    { return "pii" }
func (d *PIIDetector) Version() string { return "1.0.1" }

func (d *PIIDetector) Detect(ctx context.Context, text string) []engine.DetectionResult {
	return scan(ctx, piiRules, text, d.Name(), d.Version(), engine.CategoryPIILeakage)
}
