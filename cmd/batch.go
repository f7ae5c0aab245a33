package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"docqc/internal/config"
	"docqc/internal/history"
	"docqc/internal/logger"
	"docqc/internal/quality"
	"docqc/internal/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"
)

var batchCmd = &cobra.Command{
	Use:   "batch [sessions-root]",
	Short: "Assess every capture session under a directory",
	Long: `Assess all capture sessions found under the given root directory.

A capture session is a <stem>_<timestamp> directory holding a text.json
item list or a textract.log capture, optionally with a blur_analysis.json
sharpness sidecar. Sessions are assessed in parallel and a summary of the
quality bands is printed at the end.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 12)
  RESULTS_DIR   - Default sessions root when none is given`,
	Example: `  # Assess everything under the capture log directory
  docqc batch log

  # Persist all reports to the history database
  docqc batch log --save

  # Machine-readable results for the whole run
  docqc batch log --json -o batch-report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

// SessionResult represents the outcome of assessing a single session
type SessionResult struct {
	Session      string          `json:"session"`
	Status       string          `json:"status"` // "success", "warning", "error"
	Report       *quality.Report `json:"report,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	Error        error           `json:"-"`
	Index        int             `json:"-"`
}

// batchOutput is the JSON shape of a whole batch run
type batchOutput struct {
	Root     string          `json:"root"`
	Total    int             `json:"total"`
	Success  int             `json:"success"`
	Warnings int             `json:"warnings"`
	Errors   int             `json:"errors"`
	Sessions []SessionResult `json:"sessions"`
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "", "Output file path for the JSON results")
	batchCmd.Flags().Bool("json", false, "Output results as JSON")
	batchCmd.Flags().Bool("save", false, "Persist every report to the history database")
	batchCmd.Flags().String("db", "", "History database path (default from HISTORY_DB_PATH)")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default from BATCH_WORKERS)")
	batchCmd.Flags().Int("timeout", 1800, "Processing timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")
	dbPath, _ := cmd.Flags().GetString("db")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return err
	}

	root := cfg.ResultsDir
	if len(args) == 1 {
		root = args[0]
	}

	numWorkers := cfg.BatchWorkers
	if cmd.Flags().Changed("workers") {
		numWorkers, _ = cmd.Flags().GetInt("workers")
	}
	if numWorkers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", numWorkers)
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("sessions root not found: %s", root)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	log.Info().
		Str("root", root).
		Int("workers", numWorkers).
		Bool("save", save).
		Bool("json", jsonOutput).
		Msg("Starting batch assessment")

	// Console chrome goes nowhere when the JSON results stream to stdout.
	console := io.Writer(os.Stdout)
	if jsonOutput && outputPath == "" {
		console = io.Discard
	}

	fmt.Fprintln(console, strings.Repeat("=", 80))
	fmt.Fprintln(console, "                        DOCUMENT QUALITY BATCH")
	fmt.Fprintln(console, strings.Repeat("=", 80))
	fmt.Fprintf(console, "Sessions root: %s\n", root)
	fmt.Fprintln(console)

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	loader := session.NewLoader()
	dirs, err := loader.Discover(root)
	if err != nil {
		return fmt.Errorf("failed to discover sessions: %w", err)
	}
	if len(dirs) == 0 {
		fmt.Fprintln(console, "No capture sessions found.")
		return nil
	}

	fmt.Fprintf(console, "Assessing %d sessions with %d parallel workers...\n\n", len(dirs), numWorkers)

	assessor := quality.NewAssessorWithThresholds(cfg.GetSharpnessThresholds())
	results := assessSessionsInParallel(ctx, dirs, loader, assessor, numWorkers, console, log)

	fmt.Fprintln(console)

	successCount := 0
	warningCount := 0
	errorCount := 0
	bandCounts := map[string]int{}
	for _, result := range results {
		switch result.Status {
		case "success":
			successCount++
		case "warning":
			warningCount++
		case "error":
			errorCount++
		}
		if result.Report != nil {
			bandCounts[result.Report.Statistics.QualityAssessment]++
		}
	}

	fmt.Fprintln(console, strings.Repeat("=", 50))
	fmt.Fprintln(console, "                 SUMMARY")
	fmt.Fprintln(console, strings.Repeat("=", 50))
	fmt.Fprintf(console, "Good quality: %d\n", successCount)
	if warningCount > 0 {
		fmt.Fprintf(console, "Likely blurry: %d\n", warningCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(console, "Errors: %d\n", errorCount)
	}
	fmt.Fprintln(console)
	fmt.Fprintln(console, "Quality bands:")
	for _, band := range []string{quality.QualityExcellent, quality.QualityGood, quality.QualityFair, quality.QualityPoor} {
		if bandCounts[band] > 0 {
			fmt.Fprintf(console, "  %s: %d\n", band, bandCounts[band])
		}
	}
	fmt.Fprintln(console, strings.Repeat("=", 80))

	if save {
		if dbPath == "" {
			dbPath = cfg.HistoryDBPath
		}
		saved, err := saveBatchReports(ctx, dbPath, results, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(console, "Saved %d assessments to %s\n", saved, dbPath)
	}

	log.Info().
		Int("total", len(dirs)).
		Int("success", successCount).
		Int("warnings", warningCount).
		Int("errors", errorCount).
		Msg("Batch assessment completed")

	if jsonOutput {
		output := batchOutput{
			Root:     root,
			Total:    len(results),
			Success:  successCount,
			Warnings: warningCount,
			Errors:   errorCount,
			Sessions: results,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		if outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			log.Info().Str("output_file", outputPath).Msg("Batch results written to file")
			return nil
		}
		fmt.Println(string(data))
	}

	return nil
}

// assessSessionsInParallel grades sessions with a bounded worker pool. The
// weighted semaphore caps how many sessions are in flight at once.
func assessSessionsInParallel(ctx context.Context, dirs []string, loader *session.Loader, assessor *quality.Assessor, numWorkers int, console io.Writer, log zerolog.Logger) []SessionResult {
	results := make([]SessionResult, len(dirs))

	sem := semaphore.NewWeighted(int64(numWorkers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	processed := 0

	for i, dir := range dirs {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Canceled or timed out; mark everything not yet started.
			for j := i; j < len(dirs); j++ {
				results[j] = SessionResult{
					Session:      filepath.Base(dirs[j]),
					Status:       "error",
					Error:        ctx.Err(),
					ErrorMessage: ctx.Err().Error(),
					Index:        j,
				}
			}
			break
		}

		wg.Add(1)
		go func(index int, dir string) {
			defer wg.Done()
			defer sem.Release(1)

			log.Debug().
				Str("dir", dir).
				Int("index", index+1).
				Msg("Worker assessing session")

			result := assessSingleSession(dir, loader, assessor)
			result.Index = index
			if result.Error != nil {
				result.ErrorMessage = result.Error.Error()
			}
			results[index] = result

			mu.Lock()
			processed++
			fmt.Fprintf(console, "[%d/%d] %s %s", processed, len(dirs), result.Session, getStatusEmoji(result.Status))
			if result.Error != nil {
				fmt.Fprintf(console, " (%s)", result.Error.Error())
			} else if result.Report != nil {
				fmt.Fprintf(console, " (%s, %s confidence)", result.Report.Statistics.QualityAssessment, result.Report.Overall.ConfidenceLevel)
			}
			fmt.Fprintln(console)
			mu.Unlock()
		}(i, dir)
	}

	wg.Wait()
	return results
}

// assessSingleSession loads one capture session and grades it
func assessSingleSession(dir string, loader *session.Loader, assessor *quality.Assessor) SessionResult {
	result := SessionResult{Session: filepath.Base(dir), Status: "error"}

	sess, err := loader.Load(dir)
	if err != nil {
		result.Error = fmt.Errorf("loading session failed: %w", err)
		return result
	}
	result.Session = sess.Name

	log := logger.WithSession(sess.Name)

	var report *quality.Report
	switch {
	case sess.Sharpness != nil:
		report, err = assessor.AssessWithSharpnessAnalysis(sess.Observations, *sess.Sharpness)
	case sess.SharpnessScore != nil:
		report, err = assessor.AssessWithSharpness(sess.Observations, *sess.SharpnessScore)
	default:
		report, err = assessor.Assess(sess.Observations)
	}
	if err != nil {
		result.Error = fmt.Errorf("assessment failed: %w", err)
		return result
	}

	result.Report = report
	result.Status = "success"
	if report.Overall.IsBlurry {
		result.Status = "warning"
	}

	log.Debug().
		Str("quality", report.Statistics.QualityAssessment).
		Str("confidence_level", report.Overall.ConfidenceLevel).
		Bool("is_blurry", report.Overall.IsBlurry).
		Msg("Session assessed")

	return result
}

// saveBatchReports persists every successful report and returns the count
func saveBatchReports(ctx context.Context, dbPath string, results []SessionResult, log zerolog.Logger) (int, error) {
	store, err := history.Open(dbPath)
	if err != nil {
		log.Error().Err(err).Str("db", dbPath).Msg("Failed to open history database")
		return 0, fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close history database")
		}
	}()

	saved := 0
	for _, result := range results {
		if result.Report == nil {
			continue
		}
		rec := history.NewRecord(result.Session, result.Report)
		if err := store.Save(ctx, rec); err != nil {
			log.Error().Err(err).Str("session", result.Session).Msg("Failed to save assessment record")
			return saved, fmt.Errorf("failed to save record for %s: %w", result.Session, err)
		}
		saved++
	}

	return saved, nil
}

// getStatusEmoji returns an emoji for the processing status
func getStatusEmoji(status string) string {
	switch status {
	case "success":
		return "✅"
	case "warning":
		return "⚠️"
	case "error":
		return "❌"
	default:
		return "❓"
	}
}
