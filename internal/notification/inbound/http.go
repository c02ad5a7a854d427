package inbound

import (
	"context"

	"github.com/gocount/dashboard/internal/notification/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
)

type uc interface {
	ListDeliveries(ctx context.Context, in usecase.ListDeliveriesInput) (*usecase.ListDeliveriesOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notification/deliveries", end.ListDeliveries)
}
