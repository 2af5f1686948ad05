package events

import "time"

// SubscriptionStart is emitted when a subscription opens its lnd stream.
type SubscriptionStart struct {
	Method string
	Topic  string
}

// SubscriptionStop is emitted when a subscription session is torn down.
type SubscriptionStop struct {
	Method   string
	Topic    string
	Duration time.Duration
}
