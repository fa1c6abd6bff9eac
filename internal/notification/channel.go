package notification

import "context"

// Notification is one send request. It is not persisted.
type Notification struct {
	Definition Definition
	Item       any
	Receivers  []Receiver
	Context    map[string]any
}

// Result is what a channel reports back; chained notifications receive it.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Channel renders and transmits one kind of notification.
type Channel interface {
	Kind() ChannelKind
	PrepareReceivers(n Notification, receivers []Receiver) []Receiver
	PrepareMessage(n Notification) (any, error)
	// SendInner delivers message to every receiver. Channels that tolerate
	// per-receiver failures count them in Result instead of returning an error.
	SendInner(ctx context.Context, n Notification, receivers []Receiver, message any) (Result, error)
	HistoryDetails(n Notification, message any) string
	FormatReceiver(r Receiver) string
}
