package internal

type MessageService interface {
	Send(message Message) error
}

type Message interface {
	MessageType() string
}

// NotificationService delivers operator-facing alerts; one alert per failed
// bulk-sync run, never one per failed entity.
type NotificationService interface {
	NotifyOperators(text string)
}
