// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the hours-mailer pipeline.
package types

// PeriodCount is the number of period-hours columns on a roster row (h1..h4).
const PeriodCount = 4

// VolunteerRecord is one roster row. Hour fields are nil when the cell is empty.
type VolunteerRecord struct {
	// Row is the 1-based spreadsheet row the record was read from.
	Row int `json:"row" yaml:"row"`

	// Name identifies the volunteer and is the grouping key for hour totals.
	Name string `json:"name" yaml:"name"`

	// HeaderHours is the "ht" column. It is substituted into the document
	// but is not part of the hour total.
	HeaderHours *float64 `json:"header_hours,omitempty" yaml:"header_hours,omitempty"`

	// HeaderText holds a non-numeric "ht" cell verbatim. HeaderHours is nil
	// when it is set.
	HeaderText string `json:"header_text,omitempty" yaml:"header_text,omitempty"`

	// Hours holds the four period-hours columns in sheet order.
	Hours [PeriodCount]*float64 `json:"hours" yaml:"hours"`

	// Tasks is the free-text task description.
	Tasks string `json:"tasks" yaml:"tasks"`

	// Feedback is free-text feedback for the volunteer.
	Feedback string `json:"feedback" yaml:"feedback"`

	// Email is the recipient address for the volunteer's document.
	Email string `json:"email" yaml:"email"`
}

// Artifacts are the files produced for one record.
type Artifacts struct {
	// DocumentPath is the filled .docx.
	DocumentPath string `json:"document_path" yaml:"document_path"`

	// PDFPath is the converted document that is mailed.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`
}

// RowState is the furthest stage a row reached.
type RowState string

const (
	StateRead      RowState = "read"
	StateFilled    RowState = "filled"
	StateConverted RowState = "converted"
	StateSent      RowState = "sent"
)

// RowOutcome records how far a row got and why it stopped.
type RowOutcome struct {
	Row       int       `json:"row" yaml:"row"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	State     RowState  `json:"state" yaml:"state"`
	Artifacts Artifacts `json:"artifacts" yaml:"artifacts"`

	// Error is empty when the row completed every stage it was asked to run.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the row stopped on an error.
func (o RowOutcome) Failed() bool {
	return o.Error != ""
}
