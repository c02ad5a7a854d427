package db

import (
	"context"

	"github.com/gocount/dashboard/internal/notification/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
)

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO notification_delivery_logs (id, user_id, channel, address, subject, status, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		dl.ID, dl.UserID, dl.Channel.String(), dl.Address, dl.Subject, dl.Status.String(), dl.Error, dl.CreatedAt, dl.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE notification_delivery_logs SET status = $2, error = $3, updated_at = $4 WHERE id = $1`,
		u.ID, u.Status.String(), u.Error, u.UpdatedAt)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) ListDeliveryLogs(ctx context.Context, userID int64, limit int32) (_ []entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveryLogs")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx,
		`SELECT id, user_id, channel, address, subject, status, error, created_at, updated_at
		 FROM notification_delivery_logs
		 WHERE user_id = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]entity.DeliveryLog, 0, limit)
	for rows.Next() {
		var (
			dl              entity.DeliveryLog
			channel, status string
		)
		if err := rows.Scan(&dl.ID, &dl.UserID, &channel, &dl.Address, &dl.Subject, &status, &dl.Error, &dl.CreatedAt, &dl.UpdatedAt); err != nil {
			return nil, s.mapError(err)
		}
		dl.Channel = entity.Channel(channel)
		dl.Status = entity.DeliveryStatus(status)
		items = append(items, dl)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}
