// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/hours-mailer/internal/convert"
	"github.com/pdiddy/hours-mailer/internal/docx"
	"github.com/pdiddy/hours-mailer/internal/ledger"
	"github.com/pdiddy/hours-mailer/internal/mail"
	"github.com/pdiddy/hours-mailer/internal/pipeline"
	"github.com/pdiddy/hours-mailer/internal/roster"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill, convert, and mail a document for every roster row",
	Long: `Run reads the roster, and for each row fills the template, converts the
filled document to PDF, and emails the PDF to the volunteer. A failure on one
row is reported and the batch moves on. After the last row the summary workbook
of total hours per volunteer is written.

With --dry-run documents are filled and converted but no mail is sent.`,
	RunE: runRun,
}

var runFlagKeys = map[string]string{
	"input":      keyInput,
	"sheet":      keySheet,
	"template":   keyTemplate,
	"output-dir": keyOutputDir,
	"backend":    keyBackend,
	"dry-run":    keyDryRun,
	"period":     keyPeriod,
}

func init() {
	runCmd.Flags().String("input", "data.xlsx", "roster spreadsheet")
	runCmd.Flags().String("sheet", "", "worksheet name (default: the active sheet)")
	runCmd.Flags().String("template", "template.docx", "Word template with {{name}}, {{h1}}.. placeholders")
	runCmd.Flags().String("output-dir", "output", "directory for documents, PDFs, summary, and ledger")
	runCmd.Flags().String("backend", "soffice", "PDF conversion backend: soffice or container")
	runCmd.Flags().Bool("dry-run", false, "fill and convert without sending mail")
	runCmd.Flags().String("period", "", "period label used in the mail subject and body")
	runCmd.Flags().String("report", "", "run report path (default: <output-dir>/run-report.yaml)")
	runCmd.Flags().Bool("no-ledger", false, "do not record deliveries in the ledger")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, runFlagKeys); err != nil {
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
	fmt.Printf("Read %d row(s) from %s (sheet %q)\n", len(res.Records), cfg.InputPath, res.Sheet)

	static := pipeline.StaticSubstitutions(cfg.Tokens)
	for _, o := range docx.Overlaps(pipeline.Substitutions(types.VolunteerRecord{}), static) {
		fmt.Fprintf(os.Stderr, "warning: placeholder %s is part of %s; the result depends on substitution order\n", o.Inner, o.Outer)
	}

	conv, err := convert.New(cfg.Conversion)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		TemplatePath: cfg.TemplatePath,
		OutputDir:    cfg.OutputDir,
		DryRun:       cfg.DryRun,
		Static:       static,
		Converter:    conv,
	}
	if !cfg.DryRun {
		composer, err := mail.NewComposer(cfg.Mail)
		if err != nil {
			return err
		}
		sender, err := mail.NewSMTPSender(cfg.Mail)
		if err != nil {
			return err
		}
		opts.Composer, opts.Sender = composer, sender
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts.RunID = uuid.NewString()
	if noLedger, _ := cmd.Flags().GetBool("no-ledger"); !noLedger {
		store, err := ledger.Open(cfg.OutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ledger disabled: %v\n", err)
		} else {
			defer store.Close()
			if id, err := store.BeginRun(ctx, cfg.InputPath, cfg.DryRun); err != nil {
				fmt.Fprintf(os.Stderr, "warning: ledger disabled: %v\n", err)
			} else {
				opts.RunID, opts.Ledger = id, store
			}
		}
	}

	skipped := pipeline.SkippedOutcomes(res.Skipped)
	if opts.Ledger != nil {
		for _, o := range skipped {
			if err := opts.Ledger.Record(ctx, opts.RunID, o); err != nil {
				fmt.Fprintf(os.Stderr, "warning: ledger: row %d: %v\n", o.Row, err)
			}
		}
	}

	p, err := pipeline.New(opts, os.Stdout)
	if err != nil {
		return err
	}
	result, runErr := p.Run(ctx, res.Records)

	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		reportPath = filepath.Join(cfg.OutputDir, pipeline.ReportFile)
	}
	report := pipeline.NewReport(opts.RunID, cfg, result, time.Now())
	report.Skipped = skipped
	if err := pipeline.WriteReport(report, reportPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Printf("report:    %s\n", reportPath)
	}

	if runErr != nil {
		return runErr
	}
	return batchError(result, len(skipped))
}

// batchError fails the command when any row failed in the pipeline or was
// rejected while reading the roster.
func batchError(result pipeline.BatchResult, skipped int) error {
	switch {
	case result.HasFailures() && skipped > 0:
		return fmt.Errorf("%d row(s) failed, %d row(s) skipped", result.Failed, skipped)
	case result.HasFailures():
		return fmt.Errorf("%d row(s) failed", result.Failed)
	case skipped > 0:
		return fmt.Errorf("%d row(s) skipped", skipped)
	}
	return nil
}
