package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers a single message. Handlers decide whether a failure is
// fatal; the transport never retries.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer speaks SMTP over implicit TLS (port 465 style).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	fromName string
}

func NewSMTPMailer(host, port, username, password, fromName string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		fromName: fromName,
	}
}

func (m *SMTPMailer) From() string {
	return fmt.Sprintf("%s <%s>", m.fromName, m.username)
}

// envelopeAddress strips a "Name <addr>" display form down to the bare
// address. RCPT TO only accepts the address itself; the display form stays
// in the To: header.
func envelopeAddress(to string) string {
	if i := strings.LastIndex(to, "<"); i >= 0 {
		if j := strings.LastIndex(to, ">"); j > i {
			return to[i+1 : j]
		}
	}
	return to
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.From()) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := m.host + ":" + m.port
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: m.host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(m.username); err != nil {
		return err
	}
	if err := client.Rcpt(envelopeAddress(to)); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
