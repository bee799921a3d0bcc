package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dmitrijs2005/imagifine/internal/common"
	"github.com/dmitrijs2005/imagifine/internal/server/models"
)

// SMTPSender delivers mail over a single SMTP endpoint. Auth is optional;
// with an empty user the connection is unauthenticated (local relay, tests).
type SMTPSender struct {
	addr       string
	auth       smtp.Auth
	from       string
	adminEmail string

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(addr, user, password, from, adminEmail string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPSender{
		addr:       addr,
		auth:       auth,
		from:       from,
		adminEmail: adminEmail,
		send:       smtp.SendMail,
	}
}

func (s *SMTPSender) SendOTP(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(
		"Your verification code is: %s\r\n\r\nThis code expires in 10 minutes.\r\n", code)
	return s.deliver(ctx, email, "Email Verification OTP", body)
}

func (s *SMTPSender) SendContactReceipt(ctx context.Context, c *models.Contact) error {
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nWe have received your query and will get back to you soon.\r\n\r\nYour query:\r\n%s\r\n\r\nBest regards,\r\nTeam Imagifine\r\n",
		c.FirstName, c.Query)
	return s.deliver(ctx, c.Email, "Thank you for contacting Imagifine", body)
}

func (s *SMTPSender) SendContactAlert(ctx context.Context, c *models.Contact) error {
	body := fmt.Sprintf(
		"New contact form submission\r\n\r\nName: %s %s\r\nEmail: %s\r\nQuery: %s\r\n",
		c.FirstName, c.LastName, c.Email, c.Query)
	return s.deliver(ctx, s.adminEmail, "New Contact Form Submission", body)
}

func (s *SMTPSender) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotificationFailed, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, to, subject, body)

	if err := s.send(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotificationFailed, err)
	}
	return nil
}
