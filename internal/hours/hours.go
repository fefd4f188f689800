// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hours accumulates per-volunteer hour totals and writes the summary
// workbook.
package hours

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

const (
	// SummarySheet is the worksheet title of the summary workbook.
	SummarySheet = "Volunteer Summary"
	// SummaryFile is the default summary file name inside the output directory.
	SummaryFile = "volunteer_summary.xlsx"
)

// RecordTotal sums the non-nil period hours of a record.
func RecordTotal(rec types.VolunteerRecord) float64 {
	var total float64
	for _, h := range rec.Hours {
		if h != nil {
			total += *h
		}
	}
	return total
}

// Summary maps volunteer names to accumulated hours. Names iterate in the
// order they were first added. The zero value is ready to use.
type Summary struct {
	names  []string
	totals map[string]float64
}

// Add adds the record's total into the running total for its name.
func (s *Summary) Add(rec types.VolunteerRecord) {
	if s.totals == nil {
		s.totals = make(map[string]float64)
	}
	if _, ok := s.totals[rec.Name]; !ok {
		s.names = append(s.names, rec.Name)
	}
	s.totals[rec.Name] += RecordTotal(rec)
}

// Names returns the distinct names in first-seen order.
func (s *Summary) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Total returns the accumulated hours for name and whether it was seen.
func (s *Summary) Total(name string) (float64, bool) {
	t, ok := s.totals[name]
	return t, ok
}

// Len returns the number of distinct names.
func (s *Summary) Len() int {
	return len(s.names)
}

// Summarize builds a Summary from a slice of records.
func Summarize(records []types.VolunteerRecord) *Summary {
	s := &Summary{}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// WriteXLSX writes the summary to path as a two-column workbook, replacing any
// existing file.
func WriteXLSX(s *Summary, path string) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	stream, err := f.NewStreamWriter(SummarySheet)
	if err != nil {
		return fmt.Errorf("creating summary stream: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := stream.SetColWidth(1, 1, 30); err != nil {
		return err
	}
	if err := stream.SetRow("A1", []interface{}{
		excelize.Cell{StyleID: headerStyle, Value: "Volunteer Name"},
		excelize.Cell{StyleID: headerStyle, Value: "Total Hours"},
	}); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for i, name := range s.names {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := stream.SetRow(cell, []interface{}{name, s.totals[name]}); err != nil {
			return fmt.Errorf("writing summary row for %s: %w", name, err)
		}
	}
	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flushing summary: %w", err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous summary: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving summary %s: %w", path, err)
	}
	return nil
}
