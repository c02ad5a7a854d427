package mail

import (
	"context"
	"log/slog"
	"strings"
)

const fallbackFrom = "no-reply@localhost"

// Log writes messages to the structured log instead of sending them.
type Log struct {
	from string
}

func NewLog(from string) *Log {
	if from == "" {
		from = fallbackFrom
	}
	return &Log{from: from}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	msg, err := msg.prepare(ctx, l.from)
	if err != nil {
		return err
	}

	body := msg.TextBody
	if body == "" {
		body = msg.HTMLBody
	}

	slog.InfoContext(ctx, "mail not sent, smtp disabled",
		"from", msg.From,
		"to", strings.Join(msg.To, ", "),
		"subject", msg.Subject,
		"body", body,
	)
	return nil
}

func (l *Log) Close() error { return nil }
