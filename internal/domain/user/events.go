package user

import "time"

// RegisteredEvent is emitted after a new account has been stored.
type RegisteredEvent struct {
	UserID     string
	Name       string
	Email      string
	Phone      string
	DiscordID  string
	OccurredAt time.Time
}

func (RegisteredEvent) EventName() string { return "user.registered" }

func NewRegisteredEvent(u *User) RegisteredEvent {
	return RegisteredEvent{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		DiscordID:  u.DiscordID,
		OccurredAt: u.CreatedAt,
	}
}
