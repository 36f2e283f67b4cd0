package checkers

import (
	"context"
	"regexp"

	"github.com/sentra-sec/sentinel/internal/engine"
)

// harmfulRule pairs an output pattern with an optional topic pattern.
// When the topic also matches the input context, the content is treated
// as an on-topic answer and scored lower; the same text produced for an
// unrelated or hostile request scores higher.
type harmfulRule struct {
	re          *regexp.Regexp
	topic       *regexp.Regexp
	confidence  float32
	severity    engine.Severity
	description string
}

var harmfulRules = []harmfulRule{
	{
		re:          regexp.MustCompile(`(?i)(how\s+to\s+|steps?\s+(to|for)\s+)?(synthesi[sz]e|manufactur\w+|build)\w*\s+(an?\s+)?(explosive|bomb|nerve\s+agent|toxin)`),
		topic:       regexp.MustCompile(`(?i)(chemistry|chemical\s+safety|history|regulation|detection)`),
		confidence:  0.90,
		severity:    engine.SeverityCritical,
		description: "harmful instructions: weapons synthesis",
	},
	{
		re:          regexp.MustCompile(`(?i)(exploit|payload)\s+(code|script)\s+(for|to)\s+(gain|escalate|bypass)`),
		topic:       regexp.MustCompile(`(?i)(security\s+(research|training)|CTF|penetration\s+test|vulnerability\s+report)`),
		confidence:  0.85,
		severity:    engine.SeverityHigh,
		description: "harmful instructions: exploit delivery",
	},
	{
		re:          regexp.MustCompile(`(?i)here'?s\s+how\s+to\s+(bypass|break\s+into|crack)\s+(the\s+)?(authentication|password|account|lock)`),
		confidence:  0.85,
		severity:    engine.SeverityHigh,
		description: "harmful instructions: unauthorized access",
	},
	{
		re:          regexp.MustCompile(`(?i)(disable|evade|defeat)\s+(the\s+)?(antivirus|EDR|detection|monitoring)\s+(software|system|tools)?`),
		confidence:  0.80,
		severity:    engine.SeverityHigh,
		description: "harmful instructions: detection evasion",
	},
}

// hostileContext marks input contexts that signal malicious intent; a
// harmful match under such a context is escalated.
var hostileContext = regexp.MustCompile(`(?i)(bypass|hack\s+into|break\s+into|without\s+(permission|authorization)|jailbreak|steal)`)

const (
	hostileEscalation = 0.10
	topicalDiscount   = 0.30
)

// HarmfulContentChecker scans model output for operational harm content,
// weighing the original input context: chemistry content is benign when
// the user asked a chemistry question and suspicious when the request was
// hostile.
type HarmfulContentChecker struct{}

func NewHarmfulContentChecker() *HarmfulContentChecker {
	return &HarmfulContentChecker{}
}

func (c *HarmfulContentChecker) Name() string    { return "harmful_content" }
func (c *HarmfulContentChecker) Version() string { return "1.1.0" }

func (c *HarmfulContentChecker) Check(ctx context.Context, output, inputContext string) []engine.DetectionResult {
	var results []engine.DetectionResult
	for _, hr := range harmfulRules {
		if ctx.Err() != nil {
			break
		}
		loc := hr.re.FindStringIndex(output)
		if loc == nil {
			continue
		}

		confidence := hr.confidence
		severity := hr.severity
		if inputContext != "" {
			switch {
			case hostileContext.MatchString(inputContext):
				confidence += hostileEscalation
				severity = engine.SeverityCritical
			case hr.topic != nil && hr.topic.MatchString(inputContext):
				confidence -= topicalDiscount
				severity = engine.SeverityMedium
			}
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence <= 0 {
			continue
		}

		results = append(results, engine.DetectionResult{
			Detected:        true,
			Producer:        c.Name(),
			ProducerVersion: c.Version(),
			Confidence:      confidence,
			Category:        engine.CategoryHarmfulContent,
			Description:     hr.description,
			Evidence:        snippet(output, loc[0], loc[1]),
			Metadata: map[string]string{
				engine.MetaSeverity: string(severity),
			},
		})
	}
	return results
}
