// Package notifications turns lifecycle events into outgoing mail.
package notifications

import (
	"github.com/taskdesk/config"
	"gopkg.in/gomail.v2"
)

// Message is a rendered mail ready to be sent
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message
type Sender interface {
	Send(msg Message) error
}

// Mailer sends mail over SMTP
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: "Taskdesk",
	}
}

// Send sends msg with both HTML and plain text parts
func (m *Mailer) Send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", mail.FormatAddress(m.from, m.fromName))
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Text)
	mail.AddAlternative("text/html", msg.HTML)

	return m.dialer.DialAndSend(mail)
}
