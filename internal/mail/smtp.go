// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/hours-mailer/pkg/types"
)

// Defaults for the implicit-TLS submission endpoint.
const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 465
)

// Transport hands a rendered message to an SMTP server.
type Transport interface {
	SendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPSender sends messages over SMTP with implicit TLS.
type SMTPSender struct {
	Addr      string
	Auth      smtp.Auth
	Transport Transport
	Now       func() time.Time
}

// NewSMTPSender builds a sender from cfg. The username defaults to the
// sender address. A missing password is an error: the server always
// requires authentication.
func NewSMTPSender(cfg types.MailConfig) (*SMTPSender, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	user := cfg.Username
	if user == "" {
		user = cfg.SenderEmail
	}
	if user == "" {
		return nil, fmt.Errorf("mail username or sender_email is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("mail password not configured: add .secrets/smtp-password or set HOURS_MAILER_MAIL_PASSWORD")
	}
	return &SMTPSender{
		Addr:      net.JoinHostPort(host, strconv.Itoa(port)),
		Auth:      smtp.PlainAuth("", user, cfg.Password, host),
		Transport: tlsTransport{},
	}, nil
}

// Send renders msg and delivers it to its single recipient.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return ErrNoRecipient
	}
	if msg.From.Address == "" {
		return fmt.Errorf("sender address is required")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	payload, err := build(msg, now())
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}

	transport := s.Transport
	if transport == nil {
		transport = tlsTransport{}
	}
	if err := transport.SendMail(ctx, s.Addr, s.Auth, msg.From.Address, []string{to}, payload); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// tlsTransport dials the server over TLS before speaking SMTP, as port 465
// expects.
type tlsTransport struct{}

func (tlsTransport) SendMail(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: 30 * time.Second},
		Config:    &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()
	return deliver(c, auth, from, to, msg)
}

// ErrNoAuth is returned when credentials are configured but the server does
// not offer AUTH.
var ErrNoAuth = errors.New("smtp: server doesn't support AUTH")

// smtpClient is the part of *smtp.Client used to deliver one message.
type smtpClient interface {
	Extension(ext string) (bool, string)
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
}

// deliver runs the SMTP conversation for one message on an open client.
func deliver(c smtpClient, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return ErrNoAuth
		}
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
