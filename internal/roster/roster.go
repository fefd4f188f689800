// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package roster reads volunteer time-tracking rows from an .xlsx workbook.
// Column order is fixed: name, ht, h1, h2, h3, h4, tasks, feedback, email.
// The first row is a header and is skipped.
package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

const (
	colName = iota
	colHeaderHours
	colH1
	colH2
	colH3
	colH4
	colTasks
	colFeedback
	colEmail
	columnCount
)

// ErrNoRows indicates the sheet has no data rows below the header.
var ErrNoRows = errors.New("no data rows")

// RowError describes a row that could not be turned into a record.
type RowError struct {
	Row  int
	Name string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Result holds the records read from a sheet and the rows that were rejected.
type Result struct {
	Sheet   string
	Records []types.VolunteerRecord
	Skipped []*RowError
}

// Load opens the workbook at path and reads the named sheet, or the active
// sheet when sheet is empty. Blank rows are ignored. A row with an empty name
// or a non-numeric h1..h4 cell is reported in Result.Skipped and not returned.
func Load(path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q: %w", sheet, ErrNoRows)
	}

	res := &Result{Sheet: sheet}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(rowNum, row)
		if err != nil {
			res.Skipped = append(res.Skipped, &RowError{Row: rowNum, Name: rec.Name, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// parseRow maps one sheet row to a record. Short rows are padded with empty cells.
func parseRow(rowNum int, row []string) (types.VolunteerRecord, error) {
	cells := make([]string, columnCount)
	for i := 0; i < len(row) && i < columnCount; i++ {
		cells[i] = strings.TrimSpace(row[i])
	}

	rec := types.VolunteerRecord{
		Row:      rowNum,
		Name:     cells[colName],
		Tasks:    cells[colTasks],
		Feedback: cells[colFeedback],
		Email:    cells[colEmail],
	}
	if rec.Name == "" {
		return rec, errors.New("missing volunteer name")
	}

	// A non-numeric ht is substituted as written.
	if ht, err := parseHours(cells[colHeaderHours]); err == nil {
		rec.HeaderHours = ht
	} else {
		rec.HeaderText = cells[colHeaderHours]
	}

	for p, col := range []int{colH1, colH2, colH3, colH4} {
		h, err := parseHours(cells[col])
		if err != nil {
			return rec, fmt.Errorf("column h%d: %w", p+1, err)
		}
		rec.Hours[p] = h
	}
	return rec, nil
}

// parseHours returns nil for an empty cell and an error for non-numeric text.
func parseHours(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return &v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
