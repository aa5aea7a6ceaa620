// Package mailer delivers transactional email over SMTP. The mailer is
// constructed once during bootstrap and injected into the services that send
// mail; suppressing delivery in tests means injecting a stub.
package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends account-related email.
type Mailer interface {
	SendVerificationEmail(to, firstName, verifyURL string) error
}

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates an SMTPMailer for the given relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendVerificationEmail sends the email-verification message containing the
// deep link the user must follow within 24 hours.
func (m *SMTPMailer) SendVerificationEmail(to, firstName, verifyURL string) error {
	name := firstName
	if name == "" {
		name = "there"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your email address - FlowJournal")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nWelcome to FlowJournal! Please confirm your email address by opening the link below:\n\n%s\n\nThe link is valid for 24 hours. If you did not create an account, you can ignore this email.\n",
		name, verifyURL))
	msg.AddAlternative("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to FlowJournal! Please confirm your email address:</p><p><a href="%s">Verify email</a></p><p>The link is valid for 24 hours. If you did not create an account, you can ignore this email.</p>`,
		name, verifyURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}
