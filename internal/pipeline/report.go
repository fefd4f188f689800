// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hours-mailer/internal/roster"
	"github.com/pdiddy/hours-mailer/pkg/types"
)

// ReportFile is the default run report name inside the output directory.
const ReportFile = "run-report.yaml"

// Report is the YAML record of one run.
type Report struct {
	RunID    string             `yaml:"run_id,omitempty"`
	Input    string             `yaml:"input"`
	Template string             `yaml:"template"`
	DryRun   bool               `yaml:"dry_run"`
	Finished time.Time          `yaml:"finished"`
	Sent     int                `yaml:"sent"`
	Failed   int                `yaml:"failed"`
	Total    int                `yaml:"total"`
	Rows     []types.RowOutcome `yaml:"rows"`
	Skipped  []types.RowOutcome `yaml:"skipped,omitempty"`
	Hours    []VolunteerTotal   `yaml:"hours"`
}

// VolunteerTotal is one line of the hours summary.
type VolunteerTotal struct {
	Name  string  `yaml:"name"`
	Total float64 `yaml:"total"`
}

// NewReport assembles the report for result.
func NewReport(runID string, cfg types.RunConfig, result BatchResult, finished time.Time) Report {
	r := Report{
		RunID:    runID,
		Input:    cfg.InputPath,
		Template: cfg.TemplatePath,
		DryRun:   cfg.DryRun,
		Finished: finished.UTC(),
		Sent:     result.Sent,
		Failed:   result.Failed,
		Total:    result.Total(),
		Rows:     result.Outcomes,
	}
	if result.Summary != nil {
		for _, name := range result.Summary.Names() {
			total, _ := result.Summary.Total(name)
			r.Hours = append(r.Hours, VolunteerTotal{Name: name, Total: total})
		}
	}
	return r
}

// SkippedOutcomes turns rows the roster rejected into outcomes that stopped
// at StateRead, so they can be reported and recorded next to processed rows.
func SkippedOutcomes(skipped []*roster.RowError) []types.RowOutcome {
	var out []types.RowOutcome
	for _, e := range skipped {
		out = append(out, types.RowOutcome{
			Row:   e.Row,
			Name:  e.Name,
			State: types.StateRead,
			Error: e.Err.Error(),
		})
	}
	return out
}

// WriteReport writes r to path as YAML, replacing any existing file.
func WriteReport(r Report, path string) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
