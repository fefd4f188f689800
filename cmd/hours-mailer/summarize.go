// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hours-mailer/internal/hours"
	"github.com/pdiddy/hours-mailer/internal/roster"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Write the hours summary workbook without filling or mailing",
	Long: `Summarize reads the roster, totals h1..h4 per volunteer name, prints the
totals, and writes them to volunteer_summary.xlsx in the output directory.`,
	RunE: runSummarize,
}

var summarizeFlagKeys = map[string]string{
	"input":      keyInput,
	"sheet":      keySheet,
	"output-dir": keyOutputDir,
}

func init() {
	summarizeCmd.Flags().String("input", "data.xlsx", "roster spreadsheet")
	summarizeCmd.Flags().String("sheet", "", "worksheet name (default: the active sheet)")
	summarizeCmd.Flags().String("output-dir", "output", "directory for the summary workbook")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, summarizeFlagKeys); err != nil {
		return err
	}
	cfg := loadRunConfig()

	res, err := roster.Load(cfg.InputPath, cfg.Sheet)
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}
	for _, rowErr := range res.Skipped {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", rowErr)
	}

	summary := hours.Summarize(res.Records)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VOLUNTEER\tTOTAL HOURS")
	for _, name := range summary.Names() {
		total, _ := summary.Total(name)
		fmt.Fprintf(tw, "%s\t%s\n", name, strconv.FormatFloat(total, 'f', -1, 64))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}
	path := filepath.Join(cfg.OutputDir, hours.SummaryFile)
	if err := hours.WriteXLSX(summary, path); err != nil {
		return err
	}
	fmt.Printf("summary:   %s (%d volunteers)\n", path, summary.Len())
	return nil
}
