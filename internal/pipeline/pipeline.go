// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the per-volunteer batch: fill the template, convert
// it to PDF, mail it, and total everyone's hours.
//
// Each row walks Read -> Filled -> Converted -> Sent. A failed stage stops
// that row only; the batch always moves on to the next row.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/hours-mailer/internal/convert"
	"github.com/pdiddy/hours-mailer/internal/docx"
	"github.com/pdiddy/hours-mailer/internal/hours"
	"github.com/pdiddy/hours-mailer/internal/mail"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// Stage names a step of the per-row progression.
type Stage string

const (
	StageFill    Stage = "fill"
	StageConvert Stage = "convert"
	StageSend    Stage = "send"
)

// StageError reports which stage failed for which row.
type StageError struct {
	Row   int
	Name  string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("row %d (%s): %s: %v", e.Row, e.Name, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Composer renders the message for a record. *mail.Composer implements it.
type Composer interface {
	Compose(rec types.VolunteerRecord, total float64, pdfPath string) (mail.Message, error)
}

// Recorder persists row outcomes. *ledger.Store implements it.
type Recorder interface {
	Record(ctx context.Context, runID string, o types.RowOutcome) error
}

// Options configures a Pipeline. Composer and Sender may be nil in dry-run
// mode; Ledger is optional.
type Options struct {
	TemplatePath string
	OutputDir    string
	DryRun       bool

	// Static is applied to every document after the record's own map.
	Static docx.Substitutions

	Converter convert.Converter
	Composer  Composer
	Sender    mail.Sender

	Ledger Recorder
	RunID  string
}

// Pipeline processes roster records one at a time.
type Pipeline struct {
	opts Options
	w    io.Writer
}

// New validates opts and returns a pipeline writing status lines to w.
func New(opts Options, w io.Writer) (*Pipeline, error) {
	if opts.TemplatePath == "" {
		return nil, errors.New("template path is required")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("output directory is required")
	}
	if opts.Converter == nil {
		return nil, errors.New("converter is required")
	}
	if !opts.DryRun && (opts.Composer == nil || opts.Sender == nil) {
		return nil, errors.New("mail composer and sender are required unless dry run")
	}
	return &Pipeline{opts: opts, w: w}, nil
}

// BatchResult holds the outcome of a run.
type BatchResult struct {
	Sent      int
	Converted int // dry run only: rows that stopped after conversion on purpose
	Failed    int
	Outcomes  []types.RowOutcome

	Summary     *hours.Summary
	SummaryPath string
}

// Total returns the number of rows processed.
func (r BatchResult) Total() int {
	return len(r.Outcomes)
}

// HasFailures reports whether any row failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ProcessRecord takes one record through every stage it can reach. The
// returned error is a *StageError when a stage failed; the outcome is filled
// in either way.
func (p *Pipeline) ProcessRecord(ctx context.Context, rec types.VolunteerRecord) (types.RowOutcome, error) {
	art := ArtifactPaths(p.opts.OutputDir, rec.Name)
	out := types.RowOutcome{
		Row:       rec.Row,
		Name:      rec.Name,
		Email:     rec.Email,
		State:     types.StateRead,
		Artifacts: art,
	}

	fail := func(stage Stage, err error) (types.RowOutcome, error) {
		serr := &StageError{Row: rec.Row, Name: rec.Name, Stage: stage, Err: err}
		out.Error = serr.Error()
		fmt.Fprintf(p.w, "failed:    %s (%s: %v)\n", rec.Name, stage, err)
		return out, serr
	}

	if err := docx.Fill(p.opts.TemplatePath, art.DocumentPath, Substitutions(rec), p.opts.Static); err != nil {
		return fail(StageFill, err)
	}
	out.State = types.StateFilled
	fmt.Fprintf(p.w, "filled:    %s\n", art.DocumentPath)

	if err := p.opts.Converter.Convert(art.DocumentPath, art.PDFPath); err != nil {
		return fail(StageConvert, err)
	}
	out.State = types.StateConverted
	fmt.Fprintf(p.w, "converted: %s\n", art.PDFPath)

	if p.opts.DryRun {
		fmt.Fprintf(p.w, "skipped:   %s -> %s (dry run)\n", rec.Name, rec.Email)
		return out, nil
	}

	msg, err := p.opts.Composer.Compose(rec, hours.RecordTotal(rec), art.PDFPath)
	if err != nil {
		return fail(StageSend, err)
	}
	if err := p.opts.Sender.Send(ctx, msg); err != nil {
		return fail(StageSend, err)
	}
	out.State = types.StateSent
	fmt.Fprintf(p.w, "sent:      %s -> %s\n", rec.Name, msg.To)
	return out, nil
}

// Run processes every record in order. Every record's hours count toward the
// summary even when its row fails later. Row failures never stop the batch;
// the returned error covers the output directory, cancellation, and the
// summary workbook.
func (p *Pipeline) Run(ctx context.Context, records []types.VolunteerRecord) (BatchResult, error) {
	result := BatchResult{Summary: &hours.Summary{}}

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", p.opts.OutputDir, err)
	}

	for _, rec := range records {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		result.Summary.Add(rec)
		o, err := p.ProcessRecord(ctx, rec)
		result.Outcomes = append(result.Outcomes, o)
		switch {
		case err != nil:
			result.Failed++
		case o.State == types.StateSent:
			result.Sent++
		default:
			result.Converted++
		}

		if p.opts.Ledger != nil {
			if err := p.opts.Ledger.Record(ctx, p.opts.RunID, o); err != nil {
				fmt.Fprintf(p.w, "  warning: ledger: %v\n", err)
			}
		}
	}

	summaryPath := filepath.Join(p.opts.OutputDir, hours.SummaryFile)
	if err := hours.WriteXLSX(result.Summary, summaryPath); err != nil {
		return result, fmt.Errorf("writing summary: %w", err)
	}
	result.SummaryPath = summaryPath

	if p.opts.DryRun {
		fmt.Fprintf(p.w, "\nBatch summary: %d converted (dry run), %d failed (total: %d)\n",
			result.Converted, result.Failed, result.Total())
	} else {
		fmt.Fprintf(p.w, "\nBatch summary: %d sent, %d failed (total: %d)\n",
			result.Sent, result.Failed, result.Total())
	}
	fmt.Fprintf(p.w, "summary:   %s (%d volunteers)\n", summaryPath, result.Summary.Len())
	return result, nil
}
