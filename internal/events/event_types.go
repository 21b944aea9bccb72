package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp        EventType = "user_signed_up"
	EventUserLoggedIn        EventType = "user_logged_in"
	EventAccessTokenReissued EventType = "access_token_reissued"
	EventProfileUpdated      EventType = "profile_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(eventType EventType, subject string, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: at,
		Payload:   payload,
	}
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Nickname string `json:"nickname"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	OldNickname string `json:"old_nickname"`
	NewNickname string `json:"new_nickname"`
}

// AccessTokenReissuedPayload payload.
type AccessTokenReissuedPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
