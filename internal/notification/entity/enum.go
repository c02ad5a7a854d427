package entity

type Channel string

const (
	ChannelEmail Channel = "email"
)

func (c Channel) String() string {
	return string(c)
}

type DeliveryStatus string

const (
	DeliveryStatusQueued DeliveryStatus = "queued"
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string {
	return string(s)
}
