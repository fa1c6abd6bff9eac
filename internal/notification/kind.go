package notification

import (
	"fmt"
	"strings"
)

type ChannelKind int

const (
	WebSocket ChannelKind = iota + 1
	SMS
	Email
	Push
)

var kindNames = map[ChannelKind]string{
	WebSocket: "WebSocket",
	SMS:       "SMS",
	Email:     "Email",
	Push:      "Push",
}

// String is the history group name.
func (k ChannelKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ChannelKind(%d)", int(k))
}

// Key is the lower-cased name used in category and subscription maps.
func (k ChannelKind) Key() string {
	return strings.ToLower(k.String())
}

func ParseChannelKind(s string) (ChannelKind, error) {
	for kind, name := range kindNames {
		if strings.EqualFold(s, name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown channel kind %q", s)
}

// Kinds lists every channel in a stable order.
func Kinds() []ChannelKind {
	return []ChannelKind{WebSocket, SMS, Email, Push}
}
