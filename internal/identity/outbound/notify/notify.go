package notify

import (
	"context"

	"github.com/gocount/dashboard/internal/notification/usecase"
	"github.com/gocount/dashboard/internal/pkg/instrument"
)

// Deliverer is the notification module entry point used for login codes.
type Deliverer interface {
	Deliver(ctx context.Context, in usecase.DeliverInput) error
}

type Notify struct {
	deliverer Deliverer
	ins       instrument.Instrumentation
}

func New(d Deliverer, ins instrument.Instrumentation) *Notify {
	return &Notify{
		deliverer: d,
		ins:       ins,
	}
}

func (n *Notify) Deliver(ctx context.Context, userID int64, address, subject, body string) error {
	ctx, span := n.ins.Tracer("identity.outbound.notify").Start(ctx, "Deliver")
	defer span.End()

	return n.deliverer.Deliver(ctx, usecase.DeliverInput{
		UserID:  userID,
		Address: address,
		Subject: subject,
		Body:    body,
	})
}
