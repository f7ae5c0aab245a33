package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"docqc/internal/config"
	"docqc/internal/history"
	"docqc/internal/logger"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or inspect stored assessment reports",
	Long: `List the assessments saved to the history database, newest first, or
show the full report for a single record by ID.

Records are written by 'assess --save' and 'batch --save'.`,
	Example: `  # The twenty most recent assessments
  docqc history

  # More of them, from a specific database file
  docqc history --limit 100 --db /var/lib/docqc/history.db

  # The full report for one record
  docqc history --id 6b1f1f0b-6a64-4f9c-9b67-df1f7a3c2f11

  # Machine-readable listing
  docqc history --json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().Int("limit", 20, "Number of records to list, newest first")
	historyCmd.Flags().String("id", "", "Show the full report for one record")
	historyCmd.Flags().String("db", "", "History database path (default from HISTORY_DB_PATH)")
	historyCmd.Flags().Bool("json", false, "Output as JSON format")
	historyCmd.Flags().Int("timeout", 30, "Database timeout in seconds")
}

func runHistory(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("history-cmd")

	limit, _ := cmd.Flags().GetInt("limit")
	id, _ := cmd.Flags().GetString("id")
	dbPath, _ := cmd.Flags().GetString("db")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return err
	}
	if dbPath == "" {
		dbPath = cfg.HistoryDBPath
	}

	log.Info().
		Str("db", dbPath).
		Str("id", id).
		Int("limit", limit).
		Msg("Reading assessment history")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

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

	if id != "" {
		return showHistoryRecord(ctx, store, id, jsonOutput)
	}
	return listHistoryRecords(ctx, store, dbPath, limit, jsonOutput)
}

// showHistoryRecord prints one stored assessment, report included
func showHistoryRecord(ctx context.Context, store *history.Store, id string, jsonOutput bool) error {
	rec, err := store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no assessment record with id %s", id)
		}
		return fmt.Errorf("failed to load record: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                           ASSESSMENT RECORD")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
	fmt.Printf("ID: %s\n", rec.ID)
	fmt.Printf("Source: %s\n", rec.Source)
	fmt.Printf("Assessed at: %s\n", rec.AssessedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Println()
	fmt.Print(renderReport(rec.Report, nil, false))

	return nil
}

// listHistoryRecords prints the most recent assessments as a table
func listHistoryRecords(ctx context.Context, store *history.Store, dbPath string, limit int, jsonOutput bool) error {
	records, err := store.List(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if jsonOutput {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Printf("No assessment records in %s\n", dbPath)
		return nil
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("                           ASSESSMENT HISTORY")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%-36s  %-19s  %-9s  %-6s  %s\n", "ID", "ASSESSED AT", "QUALITY", "LEVEL", "SOURCE")
	for _, rec := range records {
		fmt.Printf("%-36s  %-19s  %-9s  %-6s  %s\n",
			rec.ID,
			rec.AssessedAt.Format("2006-01-02 15:04:05"),
			rec.Quality,
			rec.ConfidenceLevel,
			rec.Source,
		)
	}
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%d record(s)\n", len(records))

	return nil
}
