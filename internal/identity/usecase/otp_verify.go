package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
)

type VerifyOTPInput struct {
	UserID  int64             `validate:"required"`
	Purpose entity.OTPPurpose `validate:"required"`
	Code    string            `validate:"required,otpcode"`
}

// VerifyOTP consumes the user's active code when it matches.
//
// The latest active row is read at a single clock snapshot and consumed with
// a compare-and-set, so of two concurrent correct submissions exactly one
// wins. A mismatch leaves the row usable.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()

	row, err := s.repoDB.GetActiveOTP(ctx, in.UserID, in.Purpose, now)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "no active otp", "user_id", in.UserID, "purpose", in.Purpose)
		return goerror.NewBusinessErr(entity.ErrNoActiveChallenge, "code expired or not found, request a new one", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get active otp", "user_id", in.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !s.otp.Equal(row.CodeHash, in.Code) {
		slog.WarnContext(ctx, "otp code not match", "user_id", in.UserID, "otp_id", row.ID)
		return goerror.NewBusinessErr(entity.ErrCodeMismatch, "invalid code", goerror.CodeUnauthorized)
	}

	consumed, err := s.repoDB.ConsumeOTP(ctx, row.ID, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume otp", "user_id", in.UserID, "otp_id", row.ID, "error", err)
		return goerror.NewServer(err)
	}

	if !consumed {
		slog.WarnContext(ctx, "otp already consumed", "user_id", in.UserID, "otp_id", row.ID)
		return goerror.NewBusinessErr(entity.ErrAlreadyConsumed, "code already used", goerror.CodeUnauthorized)
	}

	return nil
}
