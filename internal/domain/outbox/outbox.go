package outbox

import (
	"context"
	"errors"
	"fmt"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// PublishAll publishes events in order and joins any failures; a failed event does not
// stop the ones after it.
func PublishAll(ctx context.Context, p Publisher, events ...Event) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", e.EventName(), err))
		}
	}
	return errors.Join(errs...)
}
