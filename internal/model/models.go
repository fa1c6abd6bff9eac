package model

// All lists every persisted model, in dependency order, for schema migration.
func All() []any {
	return []any{
		&Device{},
		&NotificationHistory{},
		&UnsubscribedUser{},
		&Phone{},
		&PhoneReceiver{},
		&PhoneSent{},
		&PhoneReceivedRaw{},
		&PhoneReceived{},
		&PhonePendingMessage{},
	}
}
