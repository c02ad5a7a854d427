package entity

import (
	"errors"
	"time"
)

// ErrDeliveryFailure wraps the transport error of a failed send.
var ErrDeliveryFailure = errors.New("notification delivery failed")

type DeliveryLog struct {
	ID        int64
	UserID    int64
	Channel   Channel
	Address   string
	Subject   string
	Status    DeliveryStatus
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UpdateDeliveryLog struct {
	ID        int64
	Status    DeliveryStatus
	Error     string
	UpdatedAt time.Time
}
