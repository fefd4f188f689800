// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hours-mailer/internal/convert"
	"github.com/pdiddy/hours-mailer/internal/docx"
	"github.com/pdiddy/hours-mailer/internal/pipeline"
	"github.com/pdiddy/hours-mailer/internal/roster"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the template for one volunteer to preview the result",
	Long: `Fill fills the template for every roster row of the named volunteer and
prints the filled paragraphs. With --pdf the document is also converted. No
mail is sent and nothing is recorded in the ledger.`,
	RunE: runFill,
}

var fillFlagKeys = map[string]string{
	"input":      keyInput,
	"sheet":      keySheet,
	"template":   keyTemplate,
	"output-dir": keyOutputDir,
	"backend":    keyBackend,
}

func init() {
	fillCmd.Flags().String("name", "", "volunteer name as written in the roster (required)")
	fillCmd.Flags().String("input", "data.xlsx", "roster spreadsheet")
	fillCmd.Flags().String("sheet", "", "worksheet name (default: the active sheet)")
	fillCmd.Flags().String("template", "template.docx", "Word template")
	fillCmd.Flags().String("output-dir", "output", "directory for the filled document")
	fillCmd.Flags().String("backend", "soffice", "PDF conversion backend: soffice or container")
	fillCmd.Flags().Bool("pdf", false, "also convert the filled document to PDF")
	_ = fillCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, fillFlagKeys); err != nil {
		return err
	}
	cfg := loadRunConfig()
	name, _ := cmd.Flags().GetString("name")
	withPDF, _ := cmd.Flags().GetBool("pdf")

	res, err := roster.Load(cfg.InputPath, cfg.Sheet)
	if err != nil {
		return fmt.Errorf("reading roster: %w", err)
	}

	var conv convert.Converter
	if withPDF {
		if conv, err = convert.New(cfg.Conversion); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	static := pipeline.StaticSubstitutions(cfg.Tokens)
	found := 0
	for _, rec := range res.Records {
		if rec.Name != name {
			continue
		}
		found++
		art := pipeline.ArtifactPaths(cfg.OutputDir, rec.Name)
		if err := docx.Fill(cfg.TemplatePath, art.DocumentPath, pipeline.Substitutions(rec), static); err != nil {
			return fmt.Errorf("row %d: %w", rec.Row, err)
		}
		fmt.Printf("filled:    %s (row %d)\n", art.DocumentPath, rec.Row)

		paras, err := docx.Paragraphs(art.DocumentPath)
		if err != nil {
			return err
		}
		for _, p := range paras {
			if p != "" {
				fmt.Printf("  | %s\n", p)
			}
		}

		if conv != nil {
			if err := conv.Convert(art.DocumentPath, art.PDFPath); err != nil {
				return fmt.Errorf("row %d: %w", rec.Row, err)
			}
			fmt.Printf("converted: %s\n", art.PDFPath)
		}
	}
	if found == 0 {
		return fmt.Errorf("no roster row named %q in %s", name, cfg.InputPath)
	}
	if found > 1 {
		fmt.Fprintf(os.Stderr, "warning: %d rows named %q share one output file; the last row wins\n", found, name)
	}
	return nil
}
