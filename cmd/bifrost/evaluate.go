package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkoda/bifrost/internal/config"
	"github.com/mkoda/bifrost/internal/evaluator"
	"github.com/mkoda/bifrost/internal/observability"
	"github.com/mkoda/bifrost/internal/types"
)

var (
	evalConfigPath   string
	evalSnapshotPath string
	evalJSON         bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a snapshot's training actions",
	Long:  `Score each available training category from a snapshot JSON file and print the rest-vs-train recommendation.`,
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalConfigPath, "config", "", "Path to config.json file")
	evaluateCmd.Flags().StringVarP(&evalSnapshotPath, "snapshot", "s", "", "Path to snapshot JSON file (required)")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "Print machine-readable JSON instead of formatted output")
	_ = evaluateCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(evaluateCmd)
}

func loadSnapshot(path string) (*types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}
	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return &snap, nil
}

func calculatorFromConfig(path string) (types.CalculatorConfig, error) {
	if path == "" {
		return types.DefaultCalculator(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return types.CalculatorConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.CalculatorConfig{}, err
	}
	if cfg.Calculator == nil {
		return types.DefaultCalculator(), nil
	}
	return cfg.Calculator.Normalize(), nil
}

func runEvaluate(_ *cobra.Command, _ []string) error {
	snap, err := loadSnapshot(evalSnapshotPath)
	if err != nil {
		return err
	}
	calc, err := calculatorFromConfig(evalConfigPath)
	if err != nil {
		return err
	}

	evals := evaluator.EvaluateAll(snap, calc)
	decision := evaluator.Decide(evals, snap, calc)

	if evalJSON {
		out := struct {
			Evaluations map[types.Stat]evaluator.Evaluation `json:"evaluations"`
			Decision    evaluator.Decision                  `json:"decision"`
		}{evals, decision}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintEvaluations(evals)
	printer.PrintDecision(decision)
	return nil
}
