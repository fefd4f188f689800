// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"fmt"
	netmail "net/mail"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

// Default templates. Both see name, email, period, sender, total, tasks and
// feedback.
const (
	DefaultSubject = "Volunteer hours for {{ name }} - {{ period }}"
	DefaultBody    = `Hello {{ name }},

Kindly find attached your volunteering paper for the month of {{ period }}.

Sincerely yours,
{{ sender }}
`
)

// Composer renders the subject and body for each volunteer.
type Composer struct {
	from    netmail.Address
	period  string
	subject *pongo2.Template
	body    *pongo2.Template
}

// NewComposer compiles the subject and body templates from cfg, falling back
// to the defaults when either is empty.
func NewComposer(cfg types.MailConfig) (*Composer, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("mail sender_email is required")
	}
	from, err := netmail.ParseAddress(cfg.SenderEmail)
	if err != nil {
		return nil, fmt.Errorf("invalid sender_email %q: %w", cfg.SenderEmail, err)
	}
	from.Name = cfg.SenderName

	subject, err := compile("subject", cfg.Subject, DefaultSubject)
	if err != nil {
		return nil, err
	}
	body, err := compile("body", cfg.Body, DefaultBody)
	if err != nil {
		return nil, err
	}
	return &Composer{from: *from, period: cfg.Period, subject: subject, body: body}, nil
}

// compile wraps src in an autoescape-off block; the output is plain text.
func compile(what, src, fallback string) (*pongo2.Template, error) {
	if strings.TrimSpace(src) == "" {
		src = fallback
	}
	tpl, err := pongo2.FromString("{% autoescape off %}" + src + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", what, err)
	}
	return tpl, nil
}

// Compose builds the message for rec with pdfPath attached. total is the
// hours of this record.
func (c *Composer) Compose(rec types.VolunteerRecord, total float64, pdfPath string) (Message, error) {
	to := strings.TrimSpace(rec.Email)
	if to == "" {
		return Message{}, fmt.Errorf("%s: %w", rec.Name, ErrNoRecipient)
	}
	addr, err := netmail.ParseAddress(to)
	if err != nil {
		return Message{}, fmt.Errorf("invalid email %q for %s: %w", to, rec.Name, err)
	}

	ctx := pongo2.Context{
		"name":     rec.Name,
		"email":    addr.Address,
		"period":   c.period,
		"sender":   c.from.Name,
		"total":    strconv.FormatFloat(total, 'f', -1, 64),
		"tasks":    rec.Tasks,
		"feedback": rec.Feedback,
	}
	subject, err := c.subject.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("rendering subject: %w", err)
	}
	body, err := c.body.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("rendering body: %w", err)
	}

	att, err := AttachFile(pdfPath)
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:       c.from,
		To:         addr.Address,
		Subject:    strings.Join(strings.Fields(subject), " "),
		Body:       body,
		Attachment: att,
	}, nil
}
