package db

import (
	"context"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/jackc/pgx/v5"
)

func scanOrganization(row pgx.Row) (*entity.Organization, error) {
	var o entity.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *DB) GetOrganizationByID(ctx context.Context, id int64) (_ *entity.Organization, err error) {
	ctx, span := s.startSpan(ctx, "GetOrganizationByID")
	defer func() { s.endSpan(span, err) }()

	o, err := scanOrganization(s.conn.QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM identity_organizations WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return o, nil
}

func (s *DB) GetOrganizationBySlug(ctx context.Context, slug string) (_ *entity.Organization, err error) {
	ctx, span := s.startSpan(ctx, "GetOrganizationBySlug")
	defer func() { s.endSpan(span, err) }()

	o, err := scanOrganization(s.conn.QueryRow(ctx,
		`SELECT id, name, slug, created_at FROM identity_organizations WHERE slug = $1`, slug))
	if err != nil {
		return nil, s.mapError(err)
	}

	return o, nil
}

func (s *DB) CreateOrganization(ctx context.Context, org entity.Organization) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOrganization")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO identity_organizations (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`,
		org.ID, org.Name, org.Slug, org.CreatedAt)

	return s.mapError(err)
}
