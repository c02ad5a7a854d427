package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	ChallengeToken string
	ExpiresIn      int64
	// DeliveryFailed is set when the code was stored but the email was not sent.
	DeliveryFailed bool
}

func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", in.Email)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.IsActive {
		slog.WarnContext(ctx, "user account inactive", "user_id", user.ID)
		return nil, errInvalidCredentials()
	}

	if !s.bcrypt.Verify(user.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, errInvalidCredentials()
	}

	deliveryFailed := false
	if _, err := s.IssueOTP(ctx, IssueOTPInput{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: entity.OTPPurposeLogin,
		TTL:     s.otpTTL(),
	}); err != nil {
		if !errors.Is(err, entity.ErrDeliveryFailure) {
			return nil, err
		}
		deliveryFailed = true
	}

	token, err := s.pendingJWT.Generate(jwt.Subject{UserID: user.ID, OrgID: user.OrgID, Email: user.Email})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate pending jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{
		ChallengeToken: token,
		ExpiresIn:      int64(s.pendingJWT.TTL().Seconds()),
		DeliveryFailed: deliveryFailed,
	}, nil
}

// pendingUser resolves the user a pending challenge token was minted for.
func (s *Usecase) pendingUser(ctx context.Context, challengeToken string) (*entity.User, error) {
	clm, err := s.pendingJWT.Verify(challengeToken)
	if err != nil {
		slog.WarnContext(ctx, "invalid pending challenge token", "error", err)
		return nil, errChallengeExpired()
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "pending user not found", "user_id", clm.UserID)
		return nil, errInvalidCredentials()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.IsActive {
		slog.WarnContext(ctx, "user account inactive", "user_id", user.ID)
		return nil, errInvalidCredentials()
	}

	return user, nil
}
