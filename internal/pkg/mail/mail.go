// Package mail sends email. SMTP delivers through a real server; Log writes
// the message to the structured log and is used when no SMTP host is
// configured, so local logins still work.
package mail

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNoRecipients = errors.New("no recipients provided")
	ErrNoSender     = errors.New("no sender provided")
)

type Message struct {
	// From overrides the mailer's configured sender.
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	// HTMLBody is sent as an alternative part when TextBody is also set.
	HTMLBody string
}

// Mail is implemented by SMTP and Log.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// prepare checks ctx and the envelope, filling From with defaultFrom.
func (m Message) prepare(ctx context.Context, defaultFrom string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return m, err
	}
	if len(m.To)+len(m.Cc)+len(m.Bcc) == 0 {
		return m, ErrNoRecipients
	}
	if m.From == "" {
		m.From = defaultFrom
	}
	if m.From == "" {
		return m, ErrNoSender
	}
	return m, nil
}
