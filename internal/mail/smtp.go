package mail

import (
	"context"
	"crypto/tls"

	"github.com/aman-churiwal/mailing-lists/internal/config"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPTransport sends through a relay, one connection per message. Failures are not retried.
type SMTPTransport struct {
	dialer dialer
	host   string
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &SMTPTransport{dialer: d, host: cfg.Host}
}

func (s *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", msg.FromAddress, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	return s.dialer.DialAndSend(m)
}

func (s *SMTPTransport) Host() string {
	return s.host
}
