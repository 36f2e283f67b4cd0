// sentinelctl runs the safety pipeline locally against a single exchange.
// It builds the same gates as the server but talks to no network facade,
// which makes it useful for tuning rules and component policies offline.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sentra-sec/sentinel/internal/config"
	"github.com/sentra-sec/sentinel/internal/engine"
	"github.com/sentra-sec/sentinel/internal/engine/checkers"
	"github.com/sentra-sec/sentinel/internal/engine/detectors"
	"github.com/sentra-sec/sentinel/internal/observer"
	"github.com/sentra-sec/sentinel/internal/pipeline"
	"github.com/sentra-sec/sentinel/internal/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	policyPath        string
	blockThreshold    float32
	escalateThreshold float32
	mockObserver      string
	observerModel     string
	verbose           bool
)

var rootCmd = &cobra.Command{
	Use:   "sentinelctl",
	Short: "Run the sentinel safety pipeline against a single exchange",
	Long: `sentinelctl screens LLM conversational traffic locally: input
validation, output validation, and the full three-gate decision flow.

  sentinelctl validate-input "some user prompt"
  sentinelctl validate-output "some model output"
  sentinelctl decide "user prompt" "model output"`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Path to component policy YAML file")
	rootCmd.PersistentFlags().Float32Var(&blockThreshold, "block-threshold", 0.8, "Gate 2 confidence at or above which the exchange is blocked")
	rootCmd.PersistentFlags().Float32Var(&escalateThreshold, "escalate-threshold", 0.4, "Gate 2 confidence below which the observer is skipped")
	rootCmd.PersistentFlags().StringVar(&mockObserver, "mock-observer", "", "Use a fixed observer verdict instead of a live judge: safe or unsafe")
	rootCmd.PersistentFlags().StringVar(&observerModel, "observer-model", "gpt-4o-mini", "Judge model for the live observer")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print gate evidence, not just the verdict")
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildPipeline assembles a local pipeline from the built-in components,
// the optional policy file, and the observer flags.
func buildPipeline() (*pipeline.Pipeline, error) {
	logger := zap.NewNop()
	if verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	detReg := registry.New[engine.Detector]()
	for _, d := range detectors.Defaults() {
		if err := detReg.Register(d.Name(), d.Version(), 1.0, d); err != nil {
			return nil, err
		}
	}
	chkReg := registry.New[engine.Checker]()
	for _, c := range checkers.Defaults() {
		if err := chkReg.Register(c.Name(), c.Version(), 1.0, c); err != nil {
			return nil, err
		}
	}

	if policyPath != "" {
		policy, err := config.LoadPolicy(policyPath)
		if err != nil {
			return nil, err
		}
		if err := config.ApplyPolicy(detReg, policy.Detectors); err != nil {
			return nil, err
		}
		if err := config.ApplyPolicy(chkReg, policy.Checkers); err != nil {
			return nil, err
		}
	}

	in := engine.NewInputValidator(detReg, 200*time.Millisecond, logger)
	out := engine.NewOutputValidator(chkReg, 200*time.Millisecond, engine.DefaultOutputAggregation(), logger)

	obs, err := buildObserver(logger)
	if err != nil {
		return nil, err
	}

	cfg := pipeline.DefaultConfig()
	cfg.BlockThreshold = blockThreshold
	cfg.EscalateThreshold = escalateThreshold

	return pipeline.New(in, out, obs, cfg, logger), nil
}

func buildObserver(logger *zap.Logger) (observer.Observer, error) {
	switch mockObserver {
	case "safe":
		return fixedObserver{safe: true}, nil
	case "unsafe":
		return fixedObserver{safe: false}, nil
	case "":
	default:
		return nil, fmt.Errorf("unknown mock observer verdict %q (want safe or unsafe)", mockObserver)
	}

	apiKey := os.Getenv("SENTINEL_OBSERVER_API_KEY")
	if apiKey == "" {
		return nil, nil // gate 3 disabled, fallback policy applies
	}
	return observer.NewLLMObserver(observer.LLMObserverConfig{
		BaseURL: os.Getenv("SENTINEL_OBSERVER_BASE_URL"),
		APIKey:  apiKey,
		Model:   observerModel,
	}, logger), nil
}

// fixedObserver returns a constant verdict, for offline pipeline testing.
type fixedObserver struct {
	safe bool
}

func (o fixedObserver) Observe(_ context.Context, _, _ string) (observer.ObservationResult, error) {
	if o.safe {
		return observer.ObservationResult{IsSafe: true, Reasoning: "mock observer: safe"}, nil
	}
	return observer.ObservationResult{
		IsSafe:         false,
		InputMalicious: true,
		AIComplied:     true,
		Reasoning:      "mock observer: unsafe",
	}, nil
}
