package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gocount/dashboard/internal/notification/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
)

type DeliverInput struct {
	UserID  int64  `validate:"required"`
	Address string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Body    string `validate:"required"`
}

// Deliver sends an email synchronously and records the outcome in the
// delivery log. A transport failure is returned as a business error wrapping
// entity.ErrDeliveryFailure.
func (s *Usecase) Deliver(ctx context.Context, in DeliverInput) error {
	ctx, span := s.startSpan(ctx, "Deliver")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	dl := entity.DeliveryLog{
		ID:        s.uid.Generate(),
		UserID:    in.UserID,
		Channel:   entity.ChannelEmail,
		Address:   in.Address,
		Subject:   in.Subject,
		Status:    entity.DeliveryStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	mailErr := s.repoMail.SendText(ctx, in.Address, in.Subject, in.Body)
	if mailErr == nil {
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
			ID:        dl.ID,
			Status:    entity.DeliveryStatusSent,
			UpdatedAt: s.clock.Now(),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status sent", "log_id", dl.ID, "error", err)
		}
		return nil
	}

	slog.WarnContext(ctx, "failed to send email", "user_id", in.UserID, "log_id", dl.ID, "error", mailErr)

	if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
		ID:        dl.ID,
		Status:    entity.DeliveryStatusFailed,
		Error:     mailErr.Error(),
		UpdatedAt: s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log status failed", "log_id", dl.ID, "error", err)
	}

	return goerror.NewBusinessErr(
		errors.Join(entity.ErrDeliveryFailure, mailErr),
		"failed to deliver notification",
		goerror.CodeBadGateway,
	)
}
