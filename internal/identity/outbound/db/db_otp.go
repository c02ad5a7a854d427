package db

import (
	"context"
	"time"

	"github.com/gocount/dashboard/internal/identity/entity"
)

func (s *DB) CreateOTP(ctx context.Context, o entity.OneTimePassword) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO identity_one_time_passwords (id, user_id, code_hash, purpose, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, o.CodeHash, string(o.Purpose), o.ExpiresAt, o.CreatedAt)

	return s.mapError(err)
}

// GetActiveOTP returns the newest row for the user and purpose when it is
// still unconsumed and not expired at now. Older rows never become active
// again, even after the newest one is consumed or expires.
func (s *DB) GetActiveOTP(ctx context.Context, userID int64, purpose entity.OTPPurpose, now time.Time) (_ *entity.OneTimePassword, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOTP")
	defer func() { s.endSpan(span, err) }()

	var (
		o  entity.OneTimePassword
		pp string
	)

	err = s.conn.QueryRow(ctx,
		`SELECT id, user_id, code_hash, purpose, expires_at, consumed_at, created_at
		 FROM identity_one_time_passwords
		 WHERE id = (
		         SELECT id FROM identity_one_time_passwords
		         WHERE user_id = $1 AND purpose = $2
		         ORDER BY id DESC, created_at DESC
		         LIMIT 1
		       )
		   AND consumed_at IS NULL AND expires_at >= $3`,
		userID, string(purpose), now,
	).Scan(&o.ID, &o.UserID, &o.CodeHash, &pp, &o.ExpiresAt, &o.ConsumedAt, &o.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	o.Purpose = entity.OTPPurpose(pp)

	return &o, nil
}

// ConsumeOTP flips consumed_at once. It reports false when another caller
// consumed the row first.
func (s *DB) ConsumeOTP(ctx context.Context, id int64, now time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOTP")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE identity_one_time_passwords SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`,
		id, now)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
