package usecase

import (
	"context"
	"log/slog"

	"github.com/gocount/dashboard/internal/notification/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

const (
	defaultDeliveriesLimit = 20
	maxDeliveriesLimit     = 100
)

type ListDeliveriesInput struct {
	Limit int32 `validate:"gte=0,lte=100"`
}

type ListDeliveriesOutput struct {
	Items []entity.DeliveryLog
}

// ListDeliveries returns the caller's most recent delivery logs, newest first.
func (s *Usecase) ListDeliveries(ctx context.Context, in ListDeliveriesInput) (*ListDeliveriesOutput, error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultDeliveriesLimit
	}
	limit = min(limit, maxDeliveriesLimit)

	items, err := s.repoDB.ListDeliveryLogs(ctx, clm.UserID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list delivery logs", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListDeliveriesOutput{Items: items}, nil
}
