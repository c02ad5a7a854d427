package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
)

const loginCodeSubject = "Your gocount.ai login code"

type IssueOTPInput struct {
	UserID  int64             `validate:"required"`
	Email   string            `validate:"required,email"`
	Purpose entity.OTPPurpose `validate:"required"`
	TTL     time.Duration     `validate:"required"`
}

type IssueOTPOutput struct {
	ID        int64
	ExpiresAt time.Time
}

// IssueOTP stores a fresh code for the user and delivers it by email. Older
// codes are left untouched; they stop being active because only the newest
// row is ever considered.
//
// When delivery fails the row stays and the returned error wraps
// entity.ErrDeliveryFailure next to a non-nil output.
func (s *Usecase) IssueOTP(ctx context.Context, in IssueOTPInput) (*IssueOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "IssueOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.otp.Generate(s.otpLength())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	row := entity.OneTimePassword{
		ID:        s.uid.Generate(),
		UserID:    in.UserID,
		CodeHash:  s.otp.Digest(code),
		Purpose:   in.Purpose,
		ExpiresAt: now.Add(in.TTL),
		CreatedAt: now,
	}

	if err := s.repoDB.CreateOTP(ctx, row); err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp", "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &IssueOTPOutput{ID: row.ID, ExpiresAt: row.ExpiresAt}

	if err := s.notifier.Deliver(ctx, in.UserID, in.Email, loginCodeSubject, loginCodeBody(code, in.TTL)); err != nil {
		slog.WarnContext(ctx, "failed to deliver otp code", "user_id", in.UserID, "otp_id", row.ID, "error", err)
		return out, goerror.NewBusinessErr(
			errors.Join(entity.ErrDeliveryFailure, err),
			"we could not send your login code, please try again",
			goerror.CodeBadGateway,
		)
	}

	return out, nil
}

func loginCodeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf(
		"Hi,\n\nYour one-time code is: %s\nIt expires in %d minutes.\n\nIf you didn't request this, ignore this email.",
		code, int(ttl.Minutes()),
	)
}
