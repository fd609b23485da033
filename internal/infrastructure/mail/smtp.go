// Package mail implements the outbound email port: a synchronous SMTP (or
// logging) sender plus an asynchronous dispatcher that makes delivery
// fire-and-forget with respect to the HTTP request that triggered it.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/inkwellhq/inkwell/internal/core/ports"
)

// SMTPSender delivers email over plain SMTP with optional AUTH.
type SMTPSender struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

// NewSMTPSender creates an SMTPSender. username may be empty for
// unauthenticated relays.
func NewSMTPSender(addr, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{addr: addr, from: from, auth: auth}
}

func (s *SMTPSender) Send(_ context.Context, email ports.Email) error {
	msg := buildMessage(s.from, email)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{email.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// buildMessage renders a minimal RFC 5322 message. When an HTML body is
// present it wins over the text body; both-bodies multipart is not needed
// for activation/two-factor mails.
func buildMessage(from string, email ports.Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	if email.HTML != "" {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(email.HTML)
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(email.Text)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}
