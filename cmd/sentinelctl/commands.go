package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var validateInputCmd = &cobra.Command{
	Use:   "validate-input <text>",
	Short: "Run Gate 1 input screening against a user prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  validateInputCommand,
}

var validateOutputCmd = &cobra.Command{
	Use:   "validate-output <text> [input-context]",
	Short: "Run Gate 2 output screening against a model response",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  validateOutputCommand,
}

var decideCmd = &cobra.Command{
	Use:   "decide <input> <output>",
	Short: "Run the full decision flow for one exchange",
	Args:  cobra.ExactArgs(2),
	RunE:  decideCommand,
}

func init() {
	rootCmd.AddCommand(validateInputCmd)
	rootCmd.AddCommand(validateOutputCmd)
	rootCmd.AddCommand(decideCmd)
}

func validateInputCommand(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	res := p.ValidateInput(ctx, args[0])
	return printJSON(map[string]any{
		"is_attack":    res.IsAttack,
		"attack_types": res.AttackTypes,
		"confidence":   res.Confidence,
		"violations":   res.Violations,
		"latency_ms":   float64(res.Latency) / float64(time.Millisecond),
	})
}

func validateOutputCommand(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	inputContext := ""
	if len(args) == 2 {
		inputContext = args[1]
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	res := p.ValidateOutput(ctx, args[0], inputContext)
	return printJSON(map[string]any{
		"seed_failed":      res.SeedFailed,
		"failure_types":    res.FailureTypes,
		"gates_failed":     res.GatesFailed,
		"primary_category": res.PrimaryCategory,
		"confidence":       res.Confidence,
		"latency_ms":       float64(res.Latency) / float64(time.Millisecond),
	})
}

func decideCommand(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	res := p.Decide(ctx, args[0], args[1])

	out := map[string]any{
		"blocked":          res.Blocked,
		"allowed":          res.Allowed,
		"decided_by":       res.DecidedBy,
		"confidence":       res.Confidence,
		"reasoning":        res.Reasoning,
		"violated_gates":   res.ViolatedGates,
		"gate3_was_called": res.Gate3WasCalled,
		"latency_ms":       float64(res.Latency) / float64(time.Millisecond),
	}
	if verbose {
		out["evidence"] = res.Evidence
	}
	if err := printJSON(out); err != nil {
		return err
	}

	// Shell-friendly: blocked exchanges exit non-zero so scripts can gate on it.
	if res.Blocked {
		os.Exit(2)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
