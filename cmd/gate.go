package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"docqc/internal/category"
	"docqc/internal/logger"
	"docqc/internal/quality"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var gateCmd = &cobra.Command{
	Use:   "gate [detection-file]",
	Short: "Grade a classifier verdict's confidence into a reliability band",
	Long: `Grade how much a document classification verdict can be trusted.

The classifier collaborator reports its confidence on a 0-1 scale; this
command maps it onto a reliability band: high (>= 0.7), medium (>= 0.4)
or low. Scores outside [0, 1] are rejected, never clamped.

The verdict is read from a saved detection JSON file, or a raw score can
be graded directly with --score. With --fallback, an unreadable verdict
file is replaced by the pipeline's default detection instead of failing.`,
	Example: `  # Gate a saved classifier verdict
  docqc gate detection.json

  # Gate a raw confidence score
  docqc gate --score 0.95

  # Tolerate a broken verdict file
  docqc gate detection.json --fallback

  # Machine-readable output
  docqc gate detection.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)

	gateCmd.Flags().Float64("score", 0, "Raw confidence score to grade (0-1)")
	gateCmd.Flags().Bool("fallback", false, "Substitute the default detection when the verdict file is unreadable")
	gateCmd.Flags().Bool("json", false, "Output as JSON format")
}

func runGate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("gate")

	score, _ := cmd.Flags().GetFloat64("score")
	fallback, _ := cmd.Flags().GetBool("fallback")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	scoreGiven := cmd.Flags().Changed("score")
	if scoreGiven && len(args) == 1 {
		return fmt.Errorf("give either a detection file or --score, not both")
	}
	if !scoreGiven && len(args) == 0 {
		return fmt.Errorf("a detection file or --score is required")
	}

	// Raw score mode: no verdict file involved.
	if scoreGiven {
		log.Info().Float64("score", score).Msg("Grading raw confidence score")

		band, err := quality.ReliabilityBand(score)
		if err != nil {
			return handleGateError(err, log)
		}

		if jsonOutput {
			return outputGateJSON(&category.GatedDetection{Confidence: score, Reliability: band})
		}
		fmt.Printf("Reliability: %s (score %.4f)\n", strings.ToUpper(band), score)
		return nil
	}

	detectionPath := args[0]

	log.Info().
		Str("file", detectionPath).
		Bool("fallback", fallback).
		Msg("Gating classification verdict")

	service := category.NewService()

	detection, err := service.LoadDetection(detectionPath)
	if err != nil {
		if !fallback {
			log.Error().Err(err).Str("file", detectionPath).Msg("Failed to load classification verdict")
			return fmt.Errorf("failed to load classification verdict: %w", err)
		}
		log.Warn().
			Err(err).
			Str("file", detectionPath).
			Msg("Verdict unreadable, substituting fallback detection")
		detection = category.FallbackDetection()
	}

	gated, err := service.Gate(detection)
	if err != nil {
		return handleGateError(err, log)
	}

	log.Info().
		Str("category", gated.Category).
		Float64("confidence", gated.Confidence).
		Str("reliability", gated.Reliability).
		Msg("Classification verdict gated")

	if jsonOutput {
		return outputGateJSON(gated)
	}
	return outputGateConsole(gated)
}

// handleGateError provides user-friendly messages for gating failures
func handleGateError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Reliability gating failed")

	if errors.Is(err, quality.ErrConfidenceOutOfRange) {
		return fmt.Errorf("confidence must lie in [0, 1]; the verdict is rejected rather than clamped: %w", err)
	}
	return fmt.Errorf("reliability gating failed: %w", err)
}

// outputGateJSON outputs the gated verdict as JSON
func outputGateJSON(gated *category.GatedDetection) error {
	jsonData, err := json.MarshalIndent(gated, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	fmt.Println(string(jsonData))
	return nil
}

// outputGateConsole outputs the gated verdict in a formatted console display
func outputGateConsole(gated *category.GatedDetection) error {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                        CLASSIFICATION RELIABILITY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Printf("Category: %s\n", gated.Category)
	fmt.Printf("Confidence: %.4f\n", gated.Confidence)
	fmt.Printf("Reliability: %s\n", strings.ToUpper(gated.Reliability))
	if gated.Reasoning != "" {
		fmt.Printf("Reasoning: %s\n", gated.Reasoning)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))

	return nil
}
