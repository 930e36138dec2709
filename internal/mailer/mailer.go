// Package mailer sends transactional email over SMTP.
package mailer

import "gopkg.in/gomail.v2"

// SMTP is the notification collaborator used for OTP delivery. Each Send
// dials the server, delivers one message and closes the connection; a failed
// send surfaces to the caller, nothing is retried here.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTP(host string, port int, username, password, from string) *SMTP {
	return &SMTP{Host: host, Port: port, Username: username, Password: password, From: from}
}

// Send delivers a plain-text email to a single recipient.
func (m *SMTP) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return d.DialAndSend(msg)
}
