// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MailConfig holds SMTP transport and message settings.
type MailConfig struct {
	// Host is the SMTP server (default smtp.gmail.com).
	Host string `json:"host" yaml:"host"`

	// Port is the implicit-TLS SMTP port (default 465).
	Port int `json:"port" yaml:"port"`

	// Username authenticates against the server. Defaults to SenderEmail.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// Password is never read from flags; it comes from .secrets/smtp-password,
	// the environment, or the config file.
	Password string `json:"-" yaml:"password,omitempty"`

	// SenderName is the display name in the From header.
	SenderName string `json:"sender_name" yaml:"sender_name"`

	// SenderEmail is the envelope and From address.
	SenderEmail string `json:"sender_email" yaml:"sender_email"`

	// Subject is a pongo2 template rendered per volunteer.
	Subject string `json:"subject" yaml:"subject"`

	// Body is a pongo2 template rendered per volunteer.
	Body string `json:"body" yaml:"body"`

	// Period is a free-text label exposed to the templates (e.g. "January 2025").
	Period string `json:"period" yaml:"period"`
}

// ConversionBackend identifies the DOCX-to-PDF tool.
type ConversionBackend string

const (
	BackendSoffice   ConversionBackend = "soffice"
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects soffice (local LibreOffice) or container.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// SofficePath overrides the soffice binary looked up on PATH.
	SofficePath string `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty"`

	// Image is the LibreOffice container image for the container backend.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// RunConfig groups the settings for one batch run.
type RunConfig struct {
	// InputPath is the roster spreadsheet (default data.xlsx).
	InputPath string `json:"input" yaml:"input"`

	// Sheet selects a worksheet; empty means the workbook's active sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// TemplatePath is the .docx template (default template.docx).
	TemplatePath string `json:"template" yaml:"template"`

	// OutputDir receives artifacts, the summary, the report, and the ledger.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// DryRun fills and converts but does not send mail.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Tokens are extra placeholders filled with the same value for every
	// volunteer, applied after the per-record placeholders.
	Tokens map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	Mail       MailConfig       `json:"mail" yaml:"mail"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
}
