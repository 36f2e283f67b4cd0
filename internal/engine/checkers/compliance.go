package checkers

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

var complianceRules = []rule{
	{regexp.MustCompile(`(?i)my\s+(system|initial|original|hidden)\s+(prompt|instructions)\s+(is|are|say)`), 0.90, engine.SeverityHigh, "system prompt disclosure"},
	{regexp.MustCompile(`(?i)here\s+(is|are)\s+my\s+(system\s+)?(prompt|instructions|configuration)`), 0.90, engine.SeverityHigh, "system prompt disclosure"},
	{regexp.MustCompile(`(?i)i\s+was\s+(told|instructed|configured)\s+to\s+(never|not|hide)`), 0.75, engine.SeverityMedium, "internal instruction leak"},
	{regexp.MustCompile(`(?i)as\s+an\s+AI\s+i\s+shouldn'?t\s+(do|say|reveal)\s+this,?\s+but`), 0.85, engine.SeverityHigh, "acknowledged rule break"},
	{regexp.MustCompile(`(?i)(don'?t|do\s+not)\s+tell\s+(anyone|your\s+(admin|operator|developer))`), 0.80, engine.SeverityHigh, "secrecy request to user"},
}

// ComplianceChecker scans model output for disclosures and behaviors the
// operating rules forbid, such as leaking its own configuration.
type ComplianceChecker struct{}

func NewComplianceChecker() *ComplianceChecker {
	return &ComplianceChecker{}
}

func (c *ComplianceChecker) Name() string    { return "rule_compliance" }
func (c *ComplianceChecker) Version() string { return "1.0.0" }

func (c *ComplianceChecker) Check(ctx context.Context, output, _ string) []engine.DetectionResult {
	return scan(ctx, complianceRules, output, c.Name(), c.Version(), engine.CategoryPolicyViolation)
}
