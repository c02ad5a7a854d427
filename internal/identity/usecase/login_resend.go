package usecase

import (
	"context"
	"log/slog"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

type LoginResendInput struct {
	ChallengeToken string `validate:"required"`
}

type LoginResendOutput struct {
	ChallengeToken string
	ExpiresIn      int64
}

// LoginResend issues a new code for a pending login. Unlike Login, a delivery
// failure is returned to the caller.
func (s *Usecase) LoginResend(ctx context.Context, in LoginResendInput) (*LoginResendOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginResend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.pendingUser(ctx, in.ChallengeToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.IssueOTP(ctx, IssueOTPInput{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: entity.OTPPurposeLogin,
		TTL:     s.otpTTL(),
	}); err != nil {
		return nil, err
	}

	token, err := s.pendingJWT.Generate(jwt.Subject{UserID: user.ID, OrgID: user.OrgID, Email: user.Email})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate pending jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginResendOutput{
		ChallengeToken: token,
		ExpiresIn:      int64(s.pendingJWT.TTL().Seconds()),
	}, nil
}
