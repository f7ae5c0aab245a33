package cmd

import (
	"fmt"
	"os"

	"docqc/internal/logger"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "docqc",
	Short: "docqc - document quality assessment from OCR confidence scores",
	Long: `docqc grades scanned documents from the confidence scores their OCR
engine reported, without reopening the image.

It reads saved Textract artifacts (item lists, raw responses, or capture
logs), computes confidence statistics, folds in an optional Laplacian
sharpness verdict, and prints or stores the combined quality report.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("docqc executed")

		fmt.Println("Welcome to docqc!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
