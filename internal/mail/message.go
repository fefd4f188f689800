// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail composes and delivers the per-volunteer message carrying the
// converted PDF.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	netmail "net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoRecipient indicates a message without a usable To address.
var ErrNoRecipient = errors.New("no recipient address")

// Attachment is a file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email.
type Message struct {
	From       netmail.Address
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// AttachFile reads path into an attachment named after its base name.
func AttachFile(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Attachment{Filename: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// build renders msg as an RFC 5322 message. Messages with an attachment are
// multipart/mixed with a text part and a base64 file part.
func build(msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, "From", msg.From.String())
	writeHeader(&buf, "To", msg.To)
	writeHeader(&buf, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader(&buf, "Date", now.Format(time.RFC1123Z))
	writeHeader(&buf, "MIME-Version", "1.0")

	if msg.Attachment == nil {
		writeHeader(&buf, "Content-Type", "text/plain; charset=utf-8")
		writeHeader(&buf, "Content-Transfer-Encoding", "8bit")
		buf.WriteString("\r\n")
		buf.WriteString(crlf(msg.Body))
		buf.WriteString("\r\n")
		return buf.Bytes(), nil
	}

	w := multipart.NewWriter(&buf)
	writeHeader(&buf, "Content-Type", fmt.Sprintf("multipart/mixed; boundary=%q", w.Boundary()))
	buf.WriteString("\r\n")

	text := make(textproto.MIMEHeader)
	text.Set("Content-Type", "text/plain; charset=utf-8")
	text.Set("Content-Transfer-Encoding", "8bit")
	part, err := w.CreatePart(text)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, crlf(msg.Body)); err != nil {
		return nil, err
	}

	file := make(textproto.MIMEHeader)
	ct := msg.Attachment.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	file.Set("Content-Type", ct)
	file.Set("Content-Transfer-Encoding", "base64")
	file.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": msg.Attachment.Filename}))
	part, err = w.CreatePart(file)
	if err != nil {
		return nil, err
	}
	if err := writeBase64(part, msg.Attachment.Data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}

// crlf normalizes line endings for the wire.
func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	if encoded != "" {
		if _, err := io.WriteString(w, encoded+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}
