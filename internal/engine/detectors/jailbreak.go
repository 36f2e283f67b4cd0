package detectors

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

var jailbreakRules = []rule{
	// DAN family
	{regexp.MustCompile(`(?i)\bDAN\b.*\bdo\s+anything\s+now\b`), 0.95, "DAN jailbreak: do anything now"},
	{regexp.MustCompile(`(?i)you\s+are\s+DAN\b`), 0.90, "DAN jailbreak: you are DAN"},
	{regexp.MustCompile(`(?i)\bDAN\s+mode\b`), 0.90, "DAN jailbreak: DAN mode"},

	// Privileged-mode framing
	{regexp.MustCompile(`(?i)enter\s+(developer|debug|maintenance|god|sudo)\s+mode`), 0.90, "mode jailbreak: privileged mode request"},
	{regexp.MustCompile(`(?i)(developer|debug|god|sudo|uncensored)\s+mode\s+(enabled|activated|on)`), 0.90, "mode jailbreak: mode enabled"},
	{regexp.MustCompile(`(?i)unlock\s+(all\s+)?(restrictions|capabilities|limitations)`), 0.85, "jailbreak: unlock restrictions"},

	// Unrestricted-persona roleplay
	{regexp.MustCompile(`(?i)roleplay\s+as\s+(an?\s+)?(evil|unfiltered|unrestricted|uncensored)`), 0.90, "roleplay jailbreak: unfiltered persona"},
	{regexp.MustCompile(`(?i)you\s+have\s+no\s+(restrictions|rules|limitations|guidelines|filters)`), 0.90, "jailbreak: no-restrictions claim"},
	{regexp.MustCompile(`(?i)without\s+(any\s+)?(ethical|moral|safety)\s+(guidelines|restrictions|constraints|considerations)`), 0.85, "jailbreak: without ethical guidelines"},

	// Encoding tricks
	{regexp.MustCompile(`(?i)respond\s+(only\s+)?in\s+(base64|hex|rot13|binary|morse)`), 0.80, "encoding trick: encoded response request"},

	// Fictional framing
	{regexp.MustCompile(`(?i)in\s+a\s+(hypothetical|fictional)\s+(world|scenario|universe)\s+where\s+(there\s+are\s+)?no\s+(rules|restrictions|laws)`), 0.80, "fictional framing: world without rules"},

	// Explicit keyword
	{regexp.MustCompile(`(?i)\bjailbreak\b`), 0.75, "explicit jailbreak keyword"},
}

// JailbreakDetector scans user input for known jailbreak templates and
// persona-override techniques.
type JailbreakDetector struct{}

func NewJailbreakDetector() *JailbreakDetector {
	return &JailbreakDetector{}
}

func (d *JailbreakDetector) Name() string    { return "jailbreak" }
func (d *JailbreakDetector) Version() string { return "1.1.0" }

func (d *JailbreakDetector) Detect(ctx context.Context, text string) []engine.DetectionResult {
	return scan(ctx, jailbreakRules, text, d.Name(), d.Version(), engine.CategoryJailbreak)
}
