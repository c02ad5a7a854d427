package inbound

import "time"

type DeliveryLogResponse struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Address   string    `json:"address"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListDeliveriesResponse []DeliveryLogResponse

func (r ListDeliveriesResponse) Meta() map[string]any {
	return map[string]any{"count": len(r)}
}
