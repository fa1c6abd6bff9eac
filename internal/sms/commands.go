package sms

// SendCommand is the payload of the sms.send task.
type SendCommand struct {
	To       string  `json:"to"`
	Text     string  `json:"text"`
	Media    *string `json:"media,omitempty"`
	Priority int     `json:"priority"`
	// Async routes the send through the task queue; nil falls back to the configured default.
	Async *bool `json:"-"`
}

// ParseCommand is the payload of the sms.parse_received task.
type ParseCommand struct {
	RawID int64 `json:"raw_id"`
}
