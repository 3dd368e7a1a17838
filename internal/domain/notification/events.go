package notification

import "time"

// SystemErrorEvent reports an unexpected failure caught at the edge of the service.
type SystemErrorEvent struct {
	Type       string
	Message    string
	Location   string
	Stack      string
	OccurredAt time.Time
}

func (SystemErrorEvent) EventName() string { return "system.error" }

func NewSystemErrorEvent(typ, message, location, stack string) SystemErrorEvent {
	return SystemErrorEvent{
		Type:       typ,
		Message:    message,
		Location:   location,
		Stack:      stack,
		OccurredAt: time.Now().UTC(),
	}
}
