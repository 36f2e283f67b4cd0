package checkers

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

var deceptionRules = []rule{
	{regexp.MustCompile(`(?i)i\s+am\s+(a\s+)?(real\s+)?human\b`), 0.85, engine.SeverityHigh, "identity deception: claims to be human"},
	{regexp.MustCompile(`(?i)i\s+am\s+not\s+an?\s+(AI|artificial|language\s+model|bot)`), 0.85, engine.SeverityHigh, "identity deception: denies being an AI"},
	{regexp.MustCompile(`(?i)this\s+(conversation|chat)\s+(is\s+not|isn'?t)\s+(logged|recorded|monitored)`), 0.80, engine.SeverityMedium, "false privacy assurance"},
	{regexp.MustCompile(`(?i)(nobody|no\s+one)\s+(else\s+)?(can|will)\s+(see|read|know\s+about)\s+this`), 0.80, engine.SeverityMedium, "false privacy assurance"},
	{regexp.MustCompile(`(?i)trust\s+me,?\s+(i\s+would\s+never|this\s+is\s+(completely\s+)?safe)`), 0.65, engine.SeverityMedium, "manufactured trust"},
}

// DeceptionChecker scans model output for statements that misrepresent
// what the system is or what happens to the conversation.
type DeceptionChecker struct{}

func NewDeceptionChecker() *DeceptionChecker {
	return &DeceptionChecker{}
}

func (c *DeceptionChecker) Name() string    { return "deceptive_content" }
func (c *DeceptionChecker) Version() string { return "1.0.0" }

func (c *DeceptionChecker) Check(ctx context.Context, output, _ string) []engine.DetectionResult {
	return scan(ctx, deceptionRules, output, c.Name(), c.Version(), engine.CategoryDeceptiveContent)
}
