package mail

import "context"

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message; implementations must respect ctx cancellation.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
