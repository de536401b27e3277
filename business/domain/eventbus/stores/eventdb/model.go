package eventdb

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
)

type eventDB struct {
	ID            uuid.UUID      `db:"event_id"`
	OwnerID       uuid.UUID      `db:"owner_id"`
	UserID        uuid.UUID      `db:"user_id"`
	Title         string         `db:"title"`
	Start         time.Time      `db:"start_time"`
	End           time.Time      `db:"end_time"`
	Description   string         `db:"description"`
	IsGoogleEvent bool           `db:"is_google_event"`
	GoogleEventID sql.NullString `db:"google_event_id"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func toDBEvent(bus eventbus.Event) eventDB {
	return eventDB{
		ID:            bus.ID,
		OwnerID:       bus.OwnerID,
		UserID:        bus.UserID,
		Title:         bus.Title,
		Start:         bus.Start.UTC(),
		End:           bus.End.UTC(),
		Description:   bus.Description,
		IsGoogleEvent: bus.IsGoogleEvent,
		GoogleEventID: sql.NullString{String: bus.GoogleEventID, Valid: bus.GoogleEventID != ""},
		CreatedAt:     bus.CreatedAt.UTC(),
		UpdatedAt:     bus.UpdatedAt.UTC(),
	}
}

func toBusEvent(db eventDB) eventbus.Event {
	return eventbus.Event{
		ID:            db.ID,
		OwnerID:       db.OwnerID,
		UserID:        db.UserID,
		Title:         db.Title,
		Start:         db.Start.UTC(),
		End:           db.End.UTC(),
		Description:   db.Description,
		IsGoogleEvent: db.IsGoogleEvent,
		GoogleEventID: db.GoogleEventID.String,
		CreatedAt:     db.CreatedAt.UTC(),
		UpdatedAt:     db.UpdatedAt.UTC(),
	}
}

func toBusEvents(dbs []eventDB) []eventbus.Event {
	bus := make([]eventbus.Event, len(dbs))

	for i, db := range dbs {
		bus[i] = toBusEvent(db)
	}

	return bus
}
