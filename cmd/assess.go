package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"docqc/internal/config"
	"docqc/internal/history"
	"docqc/internal/logger"
	"docqc/internal/quality"
	"docqc/internal/session"
	"docqc/internal/textract"
	"docqc/pkg/models"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var assessCmd = &cobra.Command{
	Use:   "assess [results-file-or-session-dir]",
	Short: "Grade document quality from saved Textract results",
	Long: `Assess the quality of a scanned document from the confidence scores in
its saved Textract output.

The argument is either a single results artifact (a text.json item list,
a raw Textract response, or a textract.log capture) or a session
directory holding one. Session directories may also carry a
blur_analysis.json sidecar with a Laplacian sharpness verdict, which is
folded into the overall assessment automatically.

Sharpness can also be supplied directly with --sharpness or read from an
arbitrary sidecar with --sharpness-file.`,
	Example: `  # Assess a saved item list and print the report
  docqc assess text.json

  # Assess a capture session, sidecar included
  docqc assess log/receipt.jpg_20240315_142233

  # Fold in a Laplacian score measured elsewhere
  docqc assess text.json --sharpness 45.2

  # Machine-readable report, persisted to the history database
  docqc assess text.json --json --save -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	assessCmd.Flags().Bool("json", false, "Output as JSON")
	assessCmd.Flags().BoolP("verbose", "v", false, "List the items below 99% confidence")
	assessCmd.Flags().Float64("sharpness", 0, "Laplacian variance score to fold into the assessment")
	assessCmd.Flags().String("sharpness-file", "", "Path to a blur_analysis.json sidecar")
	assessCmd.Flags().Float64("blur-cutoff", 0, "Sharpness score below which the image counts as blurry (default from SHARPNESS_BLURRY_BELOW)")
	assessCmd.Flags().Float64("sharp-cutoff", 0, "Sharpness score from which the image counts as sharp (default from SHARPNESS_SHARP_FROM)")
	assessCmd.Flags().Bool("save", false, "Persist the report to the history database")
	assessCmd.Flags().String("db", "", "History database path (default from HISTORY_DB_PATH)")
	assessCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

// assessmentInput is the resolved positional argument: the observations plus
// any sharpness signal the session carried.
type assessmentInput struct {
	observations []models.Observation
	source       string
	verdict      *quality.SharpnessAnalysis
	bareScore    *float64
}

func runAssess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("assess")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	sharpnessScore, _ := cmd.Flags().GetFloat64("sharpness")
	sharpnessFile, _ := cmd.Flags().GetString("sharpness-file")
	save, _ := cmd.Flags().GetBool("save")
	dbPath, _ := cmd.Flags().GetString("db")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	target := args[0]

	log.Info().
		Str("target", target).
		Bool("json", jsonOutput).
		Bool("save", save).
		Int("timeout", timeoutSecs).
		Msg("Starting quality assessment")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return err
	}

	thresholds, err := resolveThresholds(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	input, err := loadAssessmentInput(target, log)
	if err != nil {
		return handleAssessError(err, log)
	}

	// Direct flags override whatever the session carried.
	if cmd.Flags().Changed("sharpness") {
		input.verdict, input.bareScore = nil, &sharpnessScore
	} else if sharpnessFile != "" {
		input.verdict, input.bareScore, err = session.ReadSharpnessFile(sharpnessFile)
		if err != nil {
			log.Error().Err(err).Str("file", sharpnessFile).Msg("Failed to read sharpness sidecar")
			return fmt.Errorf("failed to read sharpness sidecar: %w", err)
		}
	}

	assessor := quality.NewAssessorWithThresholds(thresholds)

	var report *quality.Report
	switch {
	case input.verdict != nil:
		report, err = assessor.AssessWithSharpnessAnalysis(input.observations, *input.verdict)
	case input.bareScore != nil:
		report, err = assessor.AssessWithSharpness(input.observations, *input.bareScore)
	default:
		report, err = assessor.Assess(input.observations)
	}
	if err != nil {
		return handleAssessError(err, log)
	}

	log.Info().
		Str("source", input.source).
		Int("total_items", report.Statistics.TotalItems).
		Str("quality", report.Statistics.QualityAssessment).
		Str("confidence_level", report.Overall.ConfidenceLevel).
		Bool("is_blurry", report.Overall.IsBlurry).
		Msg("Assessment completed")

	if save {
		if dbPath == "" {
			dbPath = cfg.HistoryDBPath
		}
		if err := saveReport(ctx, dbPath, input.source, report, log); err != nil {
			return err
		}
	}

	return outputReport(report, input.observations, outputPath, jsonOutput, verbose, log)
}

// loadAssessmentInput resolves the target into observations. Directories are
// treated as capture sessions, everything else as a single results artifact.
func loadAssessmentInput(target string, log zerolog.Logger) (*assessmentInput, error) {
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("target", target).Msg("Assessment target not found")
			return nil, fmt.Errorf("assessment target not found: %s", target)
		}
		return nil, fmt.Errorf("error accessing %s: %w", target, err)
	}

	if info.IsDir() {
		sess, err := session.NewLoader().Load(target)
		if err != nil {
			return nil, err
		}
		return &assessmentInput{
			observations: sess.Observations,
			source:       sess.Name,
			verdict:      sess.Sharpness,
			bareScore:    sess.SharpnessScore,
		}, nil
	}

	if info.Size() == 0 {
		log.Error().Str("target", target).Msg("Results file is empty")
		return nil, fmt.Errorf("results file is empty: %s", target)
	}

	obs, err := textract.Load(target)
	if err != nil {
		return nil, err
	}
	return &assessmentInput{observations: obs, source: filepath.Base(target)}, nil
}

// resolveThresholds layers flag overrides over the environment configuration
func resolveThresholds(cmd *cobra.Command, cfg *config.Config) (quality.SharpnessThresholds, error) {
	thresholds := cfg.GetSharpnessThresholds()
	if cmd.Flags().Changed("blur-cutoff") {
		thresholds.BlurryBelow, _ = cmd.Flags().GetFloat64("blur-cutoff")
	}
	if cmd.Flags().Changed("sharp-cutoff") {
		thresholds.SharpFrom, _ = cmd.Flags().GetFloat64("sharp-cutoff")
	}

	if thresholds.BlurryBelow < 0 {
		return quality.SharpnessThresholds{}, fmt.Errorf("blur cutoff must not be negative")
	}
	if thresholds.SharpFrom < thresholds.BlurryBelow {
		return quality.SharpnessThresholds{}, fmt.Errorf("sharp cutoff (%.1f) must not be below blur cutoff (%.1f)",
			thresholds.SharpFrom, thresholds.BlurryBelow)
	}
	return thresholds, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling assessment")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleAssessError maps engine errors onto actionable messages
func handleAssessError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Quality assessment failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("assessment timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("assessment was canceled")
	case errors.Is(err, quality.ErrNoObservations):
		return fmt.Errorf("no text items to assess. The results carry no detections; re-run text detection on the document first")
	case errors.Is(err, quality.ErrNegativeSharpness):
		return fmt.Errorf("sharpness score must not be negative. Laplacian variance is always >= 0; check the measurement")
	case errors.Is(err, textract.ErrSchemaViolation):
		return fmt.Errorf("results file does not match the text.json item schema: %w", err)
	case errors.Is(err, textract.ErrNoTextData):
		return fmt.Errorf("no text/confidence pairs found in the capture log. Check that the file is a textract.log capture")
	case errors.Is(err, textract.ErrUnknownFormat):
		return fmt.Errorf("unrecognized results format. Expected a text.json item list, a raw Textract response, or a textract.log capture: %w", err)
	case errors.Is(err, textract.ErrInvalidArtifact):
		return fmt.Errorf("results file is not valid JSON: %w", err)
	default:
		return fmt.Errorf("quality assessment failed: %w", err)
	}
}

// saveReport persists the report to the history database
func saveReport(ctx context.Context, dbPath, source string, report *quality.Report, log zerolog.Logger) error {
	store, err := history.Open(dbPath)
	if err != nil {
		log.Error().Err(err).Str("db", dbPath).Msg("Failed to open history database")
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close history database")
		}
	}()

	rec := history.NewRecord(source, report)
	if err := store.Save(ctx, rec); err != nil {
		log.Error().Err(err).Msg("Failed to save assessment record")
		return fmt.Errorf("failed to save assessment record: %w", err)
	}

	log.Info().
		Str("id", rec.ID).
		Str("db", dbPath).
		Msg("Assessment record saved")

	// Keep stdout clean for the report itself.
	fmt.Fprintf(os.Stderr, "Saved assessment %s\n", rec.ID)
	return nil
}

// outputReport formats and writes the assessment report
func outputReport(report *quality.Report, obs []models.Observation, outputPath string, jsonOutput, verbose bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		outputData = data
	} else {
		outputData = []byte(renderReport(report, obs, verbose))
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Assessment report written to file")
		return nil
	}

	if _, err := os.Stdout.Write(outputData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	if jsonOutput {
		fmt.Println()
	}
	return nil
}

// renderReport builds the console report in the layout of the capture
// pipeline's analysis logs
func renderReport(report *quality.Report, obs []models.Observation, verbose bool) string {
	var b strings.Builder
	stats := report.Statistics

	b.WriteString("=== BLUR ANALYSIS ===\n\n")
	fmt.Fprintf(&b, "Total text items detected: %d\n", stats.TotalItems)
	fmt.Fprintf(&b, "Confidence range: %.2f%% - %.2f%%\n", stats.MinConfidence, stats.MaxConfidence)
	fmt.Fprintf(&b, "Median confidence: %.2f%%\n", stats.MedianConfidence)
	fmt.Fprintf(&b, "Average confidence: %.2f%%\n", stats.AverageConfidence)
	fmt.Fprintf(&b, "Standard deviation: %.2f\n", stats.StdConfidence)
	fmt.Fprintf(&b, "Low confidence items: %d (%.1f%%)\n", stats.LowConfidenceCount, stats.LowConfidencePercentage)
	fmt.Fprintf(&b, "Quality assessment: %s\n", strings.ToUpper(stats.QualityAssessment))
	fmt.Fprintf(&b, "Likely blurry: %s\n", yesNo(stats.LikelyBlurry))

	if report.Sharpness != quality.NeutralSharpness() {
		b.WriteString("\n=== SHARPNESS ===\n\n")
		fmt.Fprintf(&b, "Method: %s\n", report.Sharpness.Method)
		fmt.Fprintf(&b, "Score: %.2f\n", report.Sharpness.Score)
		fmt.Fprintf(&b, "Quality: %s\n", report.Sharpness.Quality)
		fmt.Fprintf(&b, "Blurry: %s\n", yesNo(report.Sharpness.IsBlurry))
	}

	b.WriteString("\n=== OVERALL ASSESSMENT ===\n\n")
	indicators := "none"
	if len(report.Overall.BlurIndicators) > 0 {
		indicators = strings.Join(report.Overall.BlurIndicators, ", ")
	}
	fmt.Fprintf(&b, "Blurry: %s\n", yesNo(report.Overall.IsBlurry))
	fmt.Fprintf(&b, "Blur indicators: %s\n", indicators)
	fmt.Fprintf(&b, "Confidence level: %s\n", strings.ToUpper(report.Overall.ConfidenceLevel))

	if verbose {
		b.WriteString("\n=== DETAILED BREAKDOWN ===\n")
		lowItems := itemsBelow(obs, 99.0)
		if len(lowItems) > 0 {
			b.WriteString("\nItems with confidence < 99%:\n")
			for _, item := range lowItems {
				fmt.Fprintf(&b, "  %.2f%% - '%s'\n", item.Confidence, item.Text)
			}
		} else {
			b.WriteString("\nAll items have confidence >= 99%\n")
		}
	}

	b.WriteString("\n=== RECOMMENDATION ===\n")
	if report.Overall.IsBlurry {
		b.WriteString("⚠️  Image may be blurry - consider retaking\n")
	} else {
		b.WriteString("✅ Image quality appears good based on confidence scores\n")
	}

	return b.String()
}

// itemsBelow returns the observations under cutoff, lowest confidence first
func itemsBelow(obs []models.Observation, cutoff float64) []models.Observation {
	var low []models.Observation
	for _, o := range obs {
		if o.Confidence < cutoff {
			low = append(low, o)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].Confidence < low[j].Confidence })
	return low
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
