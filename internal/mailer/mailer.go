package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"contactbook/internal/config"
)

// SMTPMailer composes and sends account mail over SMTP. Callers decide
// whether to await the send; the auth service dispatches it fire-and-forget.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func New(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
	}
}

func (m *SMTPMailer) SendVerification(email, username, baseURL, verifyToken string) error {
	link := fmt.Sprintf("%s/api/auth/confirm_email/%s", baseURL, verifyToken)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your email address by following "+
			"<a href=%q>this link</a>. The link is valid for 7 days.</p>",
		username, link,
	)
	return m.send(email, "Verify Email", body)
}

func (m *SMTPMailer) SendPasswordReset(email, tempPassword string) error {
	body := fmt.Sprintf(
		"<p>Your temporary password is <b>%s</b>.</p>"+
			"<p>Log in with it and change it right away.</p>",
		tempPassword,
	)
	return m.send(email, "Password Reset", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}
