package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

type LoginVerifyInput struct {
	ChallengeToken string `validate:"required"`
	Code           string `validate:"required,otpcode"`
}

type LoginVerifyOutput struct {
	SessionToken string
	ExpiresIn    int64
	User         entity.User
}

func (s *Usecase) LoginVerify(ctx context.Context, in LoginVerifyInput) (*LoginVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "LoginVerify")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.pendingUser(ctx, in.ChallengeToken)
	if err != nil {
		return nil, err
	}

	if err := s.VerifyOTP(ctx, VerifyOTPInput{
		UserID:  user.ID,
		Purpose: entity.OTPPurposeLogin,
		Code:    in.Code,
	}); err != nil {
		return nil, err
	}

	token, err := s.sessionJWT.Generate(jwt.Subject{UserID: user.ID, OrgID: user.OrgID, Email: user.Email})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user signed in", "user_id", user.ID, "org_id", user.OrgID)

	return &LoginVerifyOutput{
		SessionToken: token,
		ExpiresIn:    int64(s.sessionJWT.TTL().Seconds()),
		User:         *user,
	}, nil
}
