package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/strcase"
)

type CreateOrganizationInput struct {
	Name string `validate:"required,max=200"`
}

// CreateOrganization returns the organization whose slug matches name,
// creating it first when missing.
func (s *Usecase) CreateOrganization(ctx context.Context, in CreateOrganizationInput) (*entity.Organization, error) {
	ctx, span := s.startSpan(ctx, "CreateOrganization")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	slug := strcase.ToSlug(in.Name)

	org, err := s.repoDB.GetOrganizationBySlug(ctx, slug)
	if err == nil {
		return org, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get organization by slug", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	newOrg := entity.Organization{
		ID:        s.uid.Generate(),
		Name:      in.Name,
		Slug:      slug,
		CreatedAt: s.clock.Now(),
	}

	err = s.repoDB.CreateOrganization(ctx, newOrg)
	if errors.Is(err, goerror.ErrConflict) {
		// lost a race with another writer, or the name is taken under another slug
		org, gErr := s.repoDB.GetOrganizationBySlug(ctx, slug)
		if gErr != nil {
			slog.WarnContext(ctx, "organization name already used", "name", in.Name, "slug", slug)
			return nil, goerror.NewBusiness("organization name already used", goerror.CodeConflict)
		}
		return org, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create organization", "slug", slug, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "organization created", "org_id", newOrg.ID, "slug", slug)

	return &newOrg, nil
}

type ProvisionUserInput struct {
	OrgSlug  string `validate:"required,slug"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

type ProvisionUserOutput struct {
	User    entity.User
	Created bool
}

// ProvisionUser creates an active user in the organization. An existing user
// with the same email is returned unchanged.
func (s *Usecase) ProvisionUser(ctx context.Context, in ProvisionUserInput) (*ProvisionUserOutput, error) {
	ctx, span := s.startSpan(ctx, "ProvisionUser")
	defer span.End()

	in.Email = entity.NormalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	user, err := s.repoDB.GetUserByEmail(ctx, in.Email)
	if err == nil {
		return &ProvisionUserOutput{User: *user}, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	org, err := s.repoDB.GetOrganizationBySlug(ctx, in.OrgSlug)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("unknown org slug "+in.OrgSlug, goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get organization by slug", "slug", in.OrgSlug, "error", err)
		return nil, goerror.NewServer(err)
	}

	passHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	newUser := entity.User{
		ID:           s.uid.Generate(),
		OrgID:        org.ID,
		Email:        in.Email,
		PasswordHash: string(passHash),
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}

	err = s.repoDB.CreateUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		existing, gErr := s.repoDB.GetUserByEmail(ctx, in.Email)
		if gErr != nil {
			slog.ErrorContext(ctx, "failed to repo get user after conflict", "email", in.Email, "error", gErr)
			return nil, goerror.NewServer(gErr)
		}
		return &ProvisionUserOutput{User: *existing}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "user provisioned", "user_id", newUser.ID, "org_id", org.ID)

	return &ProvisionUserOutput{User: newUser, Created: true}, nil
}
