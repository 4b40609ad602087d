// Package email delivers rendered notification emails over SMTP.
package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/danielBingham/communities-sub006/internal/port"
)

// SMTPSender implements port.EmailSender over a plain SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host, smtpPort, user, pass, from string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSender{
		addr: net.JoinHostPort(host, smtpPort),
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg port.EmailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("email recipient is required")
	}
	// net/smtp carries no context; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

var _ port.EmailSender = (*SMTPSender)(nil)
