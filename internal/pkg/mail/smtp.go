package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/go-mail/mail"
)

// ErrSMTPHostPortRequired is returned when Host/Port are missing.
var ErrSMTPHostPortRequired = errors.New("smtp host and port are required")

// TLS modes accepted by SMTPConfig.TLS.
const (
	TLSAuto = "auto"
	TLSSSL  = "ssl"
	TLSNone = "none"
)

// SMTP is a Mail implementation backed by github.com/go-mail/mail.
type SMTP struct {
	dialer      *gomail.Dialer
	defaultFrom string
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty.
	From string
	// TLS is one of "auto" (STARTTLS when offered), "ssl" (implicit TLS) or "none".
	TLS string
	// Timeout bounds dialing and each SMTP command.
	Timeout time.Duration
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	switch strings.ToLower(cfg.TLS) {
	case TLSSSL:
		d.SSL = true
	case TLSNone:
		d.StartTLSPolicy = gomail.NoStartTLS
	default:
		// opportunistic STARTTLS
	}

	return &SMTP{dialer: d, defaultFrom: cfg.From}, nil
}

// Send delivers msg over SMTP. go-mail dials per message, so the context
// only gates the start of the call.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	msg, err := msg.prepare(ctx, s.defaultFrom)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	if len(msg.To) > 0 {
		m.SetHeader("To", msg.To...)
	}
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// Close implements io.Closer for interface compatibility.
func (s *SMTP) Close() error {
	return nil
}
