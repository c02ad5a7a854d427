package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/jackc/pgx/v5"
)

const documentColumns = `id, org_id, date, name, file, type, amount, currency, status, created_at`

func scanDocument(row pgx.Row) (entity.Document, error) {
	var (
		d  entity.Document
		tp string
	)
	if err := row.Scan(&d.ID, &d.OrgID, &d.Date, &d.Name, &d.File, &tp, &d.Amount, &d.Currency, &d.Status, &d.CreatedAt); err != nil {
		return entity.Document{}, err
	}
	d.Type = entity.DocumentType(tp)
	return d, nil
}

func (s *DB) collect(rows pgx.Rows) ([]entity.Document, error) {
	defer rows.Close()

	items := make([]entity.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, d)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

// GetOrganizationIDsBySlugs resolves slugs to ids. Unknown slugs are absent
// from the result.
func (s *DB) GetOrganizationIDsBySlugs(ctx context.Context, slugs []string) (_ map[string]int64, err error) {
	ctx, span := s.startSpan(ctx, "GetOrganizationIDsBySlugs")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT slug, id FROM identity_organizations WHERE slug = ANY($1)`, slugs)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	result := make(map[string]int64, len(slugs))
	for rows.Next() {
		var (
			slug string
			id   int64
		)
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, s.mapError(err)
		}
		result[slug] = id
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return result, nil
}

// InsertDocuments stores the whole batch in one transaction.
func (s *DB) InsertDocuments(ctx context.Context, docs []entity.Document) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "InsertDocuments")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"documents"},
		[]string{"id", "org_id", "date", "name", "file", "type", "amount", "currency", "status", "created_at"},
		pgx.CopyFromSlice(len(docs), func(i int) ([]any, error) {
			d := docs[i]
			return []any{d.ID, d.OrgID, d.Date, d.Name, d.File, d.Type.String(), d.Amount, d.Currency, d.Status, d.CreatedAt}, nil
		}),
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

func (s *DB) ListRecentDocuments(ctx context.Context, orgID int64, limit int32) (_ []entity.Document, err error) {
	ctx, span := s.startSpan(ctx, "ListRecentDocuments")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE org_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		orgID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}

	return s.collect(rows)
}

func (s *DB) CountDocuments(ctx context.Context, orgID int64) (_ *entity.Stats, err error) {
	ctx, span := s.startSpan(ctx, "CountDocuments")
	defer func() { s.endSpan(span, err) }()

	var st entity.Stats
	err = s.conn.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE type = 'income'),
		        count(*) FILTER (WHERE type = 'expense')
		 FROM documents WHERE org_id = $1`,
		orgID,
	).Scan(&st.Total, &st.Income, &st.Expense)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &st, nil
}

func (s *DB) ListDocuments(ctx context.Context, f entity.DocumentFilter) (_ []entity.Document, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "ListDocuments")
	defer func() { s.endSpan(span, err) }()

	var tp *string
	if f.Type != "" {
		v := f.Type.String()
		tp = &v
	}

	var total int64
	if err = s.conn.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE org_id = $1 AND ($2::text IS NULL OR type = $2)`,
		f.OrgID, tp,
	).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE org_id = $1 AND ($2::text IS NULL OR type = $2)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		f.OrgID, tp, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	items, err := s.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (s *DB) GetDocumentByID(ctx context.Context, orgID, id int64) (_ *entity.Document, err error) {
	ctx, span := s.startSpan(ctx, "GetDocumentByID")
	defer func() { s.endSpan(span, err) }()

	d, err := scanDocument(s.conn.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND org_id = $2`, id, orgID))
	if err != nil {
		return nil, s.mapError(err)
	}

	return &d, nil
}
