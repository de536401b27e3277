package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry of one user inside a tenant. Events imported from
// Google carry the id Google knows them by.
type Event struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	UserID        uuid.UUID
	Title         string
	Start         time.Time
	End           time.Time
	Description   string
	IsGoogleEvent bool
	GoogleEventID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewEvent is what we require when adding an Event.
type NewEvent struct {
	OwnerID     uuid.UUID
	UserID      uuid.UUID
	Title       string
	Start       time.Time
	End         time.Time
	Description string
}

// UpdateEvent defines what information may be provided to modify an existing
// Event.
type UpdateEvent struct {
	Title       *string
	Start       *time.Time
	End         *time.Time
	Description *string
	Version     *time.Time
}

// GoogleEvent is an event as read from the user's Google calendar.
type GoogleEvent struct {
	GoogleEventID string
	Title         string
	Start         time.Time
	End           time.Time
	Description   string
}

// GoogleBatch is one import of a user's Google calendar. Google events of the
// user missing from the batch are removed; when TimeMin is set only those
// starting at or after it are considered.
type GoogleBatch struct {
	OwnerID uuid.UUID
	UserID  uuid.UUID
	Events  []GoogleEvent
	TimeMin *time.Time
}
