package email

import (
	"context"

	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendText sends a plain text message to a single recipient.
func (m *Mail) SendText(ctx context.Context, to, subject, body string) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendText")
	defer span.End()

	span.SetAttributes(attribute.String("mail.subject", subject))

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  subject,
		TextBody: body,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
