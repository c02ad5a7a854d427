package inbound

import (
	"strconv"

	"github.com/gocount/dashboard/internal/notification/entity"
	"github.com/gocount/dashboard/internal/notification/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
	"github.com/samber/lo"
)

type HTTPEndpoint struct {
	uc uc
}

// ListDeliveries lists the authenticated user's email delivery attempts.
// Query: limit (default 20, max 100).
func (h *HTTPEndpoint) ListDeliveries(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListDeliveries(r.Context(), usecase.ListDeliveriesInput{Limit: limit})
	if err != nil {
		return nil, err
	}

	return ListDeliveriesResponse(lo.Map(resp.Items, func(dl entity.DeliveryLog, _ int) DeliveryLogResponse {
		return DeliveryLogResponse{
			ID:        strconv.FormatInt(dl.ID, 10),
			Channel:   dl.Channel.String(),
			Address:   dl.Address,
			Subject:   dl.Subject,
			Status:    dl.Status.String(),
			Error:     dl.Error,
			CreatedAt: dl.CreatedAt,
			UpdatedAt: dl.UpdatedAt,
		}
	})), nil
}
