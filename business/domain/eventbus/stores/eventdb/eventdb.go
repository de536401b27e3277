// Package eventdb contains calendar event related CRUD functionality.
package eventdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const eventColumns = `
	event_id, owner_id, user_id, title, start_time, end_time, description,
	is_google_event, google_event_id, created_at, updated_at`

// Store manages the set of APIs for event database access.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// NewWithTx constructs a new Store value replacing the sqlx DB
// value with a sqlx DB value that is currently inside a transaction.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (eventbus.Storer, error) {
	ec, err := sqldb.GetExtContext(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log: s.log,
		db:  ec,
	}

	return &store, nil
}

// Create adds an Event to the database.
func (s *Store) Create(ctx context.Context, evt eventbus.Event) error {
	const q = `
	INSERT INTO events
		(event_id, owner_id, user_id, title, start_time, end_time, description,
		is_google_event, google_event_id, created_at, updated_at)
	VALUES
		(:event_id, :owner_id, :user_id, :title, :start_time, :end_time, :description,
		:is_google_event, :google_event_id, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBEvent(evt)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces an event in the database as long as nobody changed it
// since version.
func (s *Store) Update(ctx context.Context, evt eventbus.Event, version time.Time) error {
	const q = `
	UPDATE
		events
	SET
		title = :title,
		start_time = :start_time,
		end_time = :end_time,
		description = :description,
		updated_at = :updated_at
	WHERE
		event_id = :event_id AND updated_at = :version`

	data := struct {
		eventDB
		Version time.Time `db:"version"`
	}{
		eventDB: toDBEvent(evt),
		Version: version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return eventbus.ErrConflict
	}

	return nil
}

// Delete removes the event identified by a given ID.
func (s *Store) Delete(ctx context.Context, evt eventbus.Event) error {
	data := struct {
		ID string `db:"event_id"`
	}{
		ID: evt.ID.String(),
	}

	const q = `DELETE FROM events WHERE event_id = :event_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the event identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, eventID uuid.UUID) (eventbus.Event, error) {
	data := struct {
		ID string `db:"event_id"`
	}{
		ID: eventID.String(),
	}

	const q = `SELECT` + eventColumns + ` FROM events WHERE event_id = :event_id`

	var dbEvt eventDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbEvt); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return eventbus.Event{}, fmt.Errorf("db: %w", eventbus.ErrNotFound)
		}
		return eventbus.Event{}, fmt.Errorf("db: %w", err)
	}

	return toBusEvent(dbEvt), nil
}

// QueryByOwnerUser retrieves the calendar of one user ordered by start time.
func (s *Store) QueryByOwnerUser(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
		UserID  string `db:"user_id"`
	}{
		OwnerID: ownerID.String(),
		UserID:  userID.String(),
	}

	const q = `SELECT` + eventColumns + `
	FROM
		events
	WHERE
		owner_id = :owner_id AND user_id = :user_id
	ORDER BY
		start_time`

	var dbEvts []eventDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbEvts); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusEvents(dbEvts), nil
}

// UpsertGoogle inserts an imported event or refreshes the one already stored
// under the same Google id.
func (s *Store) UpsertGoogle(ctx context.Context, evt eventbus.Event) error {
	const q = `
	INSERT INTO events
		(event_id, owner_id, user_id, title, start_time, end_time, description,
		is_google_event, google_event_id, created_at, updated_at)
	VALUES
		(:event_id, :owner_id, :user_id, :title, :start_time, :end_time, :description,
		TRUE, :google_event_id, :created_at, :updated_at)
	ON CONFLICT (google_event_id) DO UPDATE SET
		title = EXCLUDED.title,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		description = EXCLUDED.description,
		updated_at = EXCLUDED.updated_at`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBEvent(evt)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteGoogleMissing removes the user's imported events whose Google id is
// not in keep, limited to events starting at or after since when given.
func (s *Store) DeleteGoogleMissing(ctx context.Context, userID uuid.UUID, keep []string, since *time.Time) error {
	data := map[string]any{
		"user_id": userID.String(),
		"keep":    pq.StringArray(keep),
	}

	const q = `
	DELETE FROM
		events
	WHERE
		user_id = :user_id AND
		is_google_event AND
		NOT (google_event_id = ANY(:keep))`

	buf := bytes.NewBufferString(q)
	if since != nil {
		data["since"] = since.UTC()
		buf.WriteString(" AND start_time >= :since")
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, buf.String(), data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteGoogleByUser removes every imported event of the user.
func (s *Store) DeleteGoogleByUser(ctx context.Context, userID uuid.UUID) error {
	data := struct {
		UserID string `db:"user_id"`
	}{
		UserID: userID.String(),
	}

	const q = `DELETE FROM events WHERE user_id = :user_id AND is_google_event`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}
