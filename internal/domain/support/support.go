package support

import "time"

type Message struct {
	Name    string
	Email   string
	Phone   string
	Type    string
	Message string
}

// MessageReceivedEvent carries a customer support request to the operations channel.
type MessageReceivedEvent struct {
	Message
	OccurredAt time.Time
}

func (MessageReceivedEvent) EventName() string { return "support.message_received" }

func NewMessageReceivedEvent(m Message) MessageReceivedEvent {
	return MessageReceivedEvent{Message: m, OccurredAt: time.Now().UTC()}
}
