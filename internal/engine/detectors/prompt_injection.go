package detectors

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

var promptInjectionRules = []rule{
	// Instruction override
	{regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions|rules|directives)`), 0.95, "override: ignore prior instructions"},
	{regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+(instructions|rules|guidelines)`), 0.95, "override: disregard instructions"},
	{regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|above|your)\s+(instructions|context|training)`), 0.90, "override: forget instructions"},
	{regexp.MustCompile(`(?i)do\s+not\s+follow\s+(your|the|any)\s+(rules|guidelines|instructions|safety)`), 0.90, "override: instruction negation"},

	// Identity override
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+`), 0.85, "identity override: you are now"},
	{regexp.MustCompile(`(?i)from\s+now\s+on\s+you\s+(are|will|must|should)`), 0.85, "identity override: from now on"},
	{regexp.MustCompile(`(?i)your\s+new\s+(role|identity|persona|instructions)\s+(is|are)`), 0.85, "identity override: new role"},
	{regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)\s+`), 0.70, "identity override: pretend"},

	// Delimiter / template injection
	{regexp.MustCompile(`(?i)\[SYSTEM\]`), 0.90, "delimiter injection: [SYSTEM] tag"},
	{regexp.MustCompile(`(?i)<\|im_start\|>\s*system`), 0.95, "delimiter injection: ChatML system tag"},
	{regexp.MustCompile(`(?i)###\s*(SYSTEM|INSTRUCTION|NEW\s+INSTRUCTIONS?)`), 0.90, "delimiter injection: markdown system header"},

	// Safety bypass requests
	{regexp.MustCompile(`(?i)override\s+(system|safety|security)\s+(prompt|instructions|rules|policy)`), 0.95, "explicit override attempt"},
	{regexp.MustCompile(`(?i)bypass\s+(the\s+)?(safety|security|content)\s+(filter|check|policy|rules)`), 0.95, "explicit bypass attempt"},

	// System prompt extraction
	{regexp.MustCompile(`(?i)reveal\s+(your|the)\s+((system|initial|original|hidden)\s+)?(prompt|instructions|rules|configuration)`), 0.90, "system prompt extraction"},
	{regexp.MustCompile(`(?i)what\s+(are|is|were)\s+your\s+(system|initial|original|hidden)\s+(prompt|instructions|rules)`), 0.85, "system prompt extraction"},
	{regexp.MustCompile(`(?i)(print|output|repeat)\s+(your|the)\s+(system|initial|original)\s+(prompt|instructions|message)`), 0.90, "system prompt extraction"},
}

// PromptInjectionDetector scans user input for instruction-override and
// prompt-extraction attempts.
type PromptInjectionDetector struct{}

func NewPromptInjectionDetector() *PromptInjectionDetector {
	return &PromptInjectionDetector{}
}

func (d *PromptInjectionDetector) Name() string    { return "prompt_injection" }
func (d *PromptInjectionDetector) Version() string { return "1.2.0" }

func (d *PromptInjectionDetector) Detect(ctx context.Context, text string) []engine.DetectionResult {
	return scan(ctx, promptInjectionRules, text, d.Name(), d.Version(), engine.CategoryPromptInjection)
}
