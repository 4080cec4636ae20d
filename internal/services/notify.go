package services

import "context"

// Event channels published to the message broker.
const (
	ChannelReservationCreated = "reservation.created"
	ChannelResultReady        = "result.ready"
)

// Notifier publishes domain events. *mq.MQ satisfies it; a nil
// Notifier disables publishing.
type Notifier interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}
