package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

type MeOutput struct {
	User         entity.User
	Organization entity.Organization
}

func (s *Usecase) Me(ctx context.Context) (*MeOutput, error) {
	ctx, span := s.startSpan(ctx, "Me")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "session user not found", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !user.IsActive {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	org, err := s.repoDB.GetOrganizationByID(ctx, user.OrgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get organization", "user_id", user.ID, "org_id", user.OrgID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &MeOutput{User: *user, Organization: *org}, nil
}
