// Package eventbus provides business access to calendar events.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("event not found")
	ErrConflict     = errors.New("event was changed by someone else")
	ErrInvalidRange = errors.New("event ends before it starts")
	ErrGoogleEvent  = errors.New("google events are managed by the calendar import")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, evt Event) error
	Update(ctx context.Context, evt Event, version time.Time) error
	Delete(ctx context.Context, evt Event) error
	QueryByID(ctx context.Context, eventID uuid.UUID) (Event, error)
	QueryByOwnerUser(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]Event, error)
	UpsertGoogle(ctx context.Context, evt Event) error
	DeleteGoogleMissing(ctx context.Context, userID uuid.UUID, keep []string, since *time.Time) error
	DeleteGoogleByUser(ctx context.Context, userID uuid.UUID) error
}

// Core manages the set of APIs for event access.
type Core struct {
	storer Storer
}

// NewCore constructs an event core API for use.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create adds a new event to the user's calendar.
func (c *Core) Create(ctx context.Context, ne NewEvent) (Event, error) {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.create")
	defer span.End()

	if ne.End.Before(ne.Start) {
		return Event{}, ErrInvalidRange
	}

	now := sqldb.Now()

	evt := Event{
		ID:          uuid.New(),
		OwnerID:     ne.OwnerID,
		UserID:      ne.UserID,
		Title:       ne.Title,
		Start:       ne.Start.UTC(),
		End:         ne.End.UTC(),
		Description: ne.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, evt); err != nil {
		return Event{}, fmt.Errorf("create: %w", err)
	}

	return evt, nil
}

// Update modifies information about an event.
func (c *Core) Update(ctx context.Context, evt Event, ue UpdateEvent) (Event, error) {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.update")
	defer span.End()

	if evt.IsGoogleEvent {
		return Event{}, ErrGoogleEvent
	}

	if ue.Version != nil && !ue.Version.Equal(evt.UpdatedAt) {
		return Event{}, fmt.Errorf("version: eventID[%s]: %w", evt.ID, ErrConflict)
	}

	if ue.Title != nil {
		evt.Title = *ue.Title
	}

	if ue.Start != nil {
		evt.Start = ue.Start.UTC()
	}

	if ue.End != nil {
		evt.End = ue.End.UTC()
	}

	if ue.Description != nil {
		evt.Description = *ue.Description
	}

	if evt.End.Before(evt.Start) {
		return Event{}, ErrInvalidRange
	}

	version := evt.UpdatedAt
	evt.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, evt, version); err != nil {
		return Event{}, fmt.Errorf("update: %w", err)
	}

	return evt, nil
}

// Delete removes the specified event.
func (c *Core) Delete(ctx context.Context, evt Event) error {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, evt); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the event by the specified ID.
func (c *Core) QueryByID(ctx context.Context, eventID uuid.UUID) (Event, error) {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.querybyid")
	defer span.End()

	evt, err := c.storer.QueryByID(ctx, eventID)
	if err != nil {
		return Event{}, fmt.Errorf("query: eventID[%s]: %w", eventID, err)
	}

	return evt, nil
}

// QueryByOwnerUser returns the calendar of one user of the tenant ordered by
// start time.
func (c *Core) QueryByOwnerUser(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]Event, error) {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.querybyowneruser")
	defer span.End()

	evts, err := c.storer.QueryByOwnerUser(ctx, ownerID, userID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s] userID[%s]: %w", ownerID, userID, err)
	}

	return evts, nil
}

// MergeGoogle brings the user's imported Google events in line with the
// batch. Run it inside a transaction.
func (c *Core) MergeGoogle(ctx context.Context, gb GoogleBatch) error {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.mergegoogle")
	defer span.End()

	now := sqldb.Now()
	keep := make([]string, 0, len(gb.Events))

	for _, ge := range gb.Events {
		if ge.GoogleEventID == "" {
			continue
		}

		evt := Event{
			ID:            uuid.New(),
			OwnerID:       gb.OwnerID,
			UserID:        gb.UserID,
			Title:         ge.Title,
			Start:         ge.Start.UTC(),
			End:           ge.End.UTC(),
			Description:   ge.Description,
			IsGoogleEvent: true,
			GoogleEventID: ge.GoogleEventID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := c.storer.UpsertGoogle(ctx, evt); err != nil {
			return fmt.Errorf("upsertgoogle: googleEventID[%s]: %w", ge.GoogleEventID, err)
		}

		keep = append(keep, ge.GoogleEventID)
	}

	if err := c.storer.DeleteGoogleMissing(ctx, gb.UserID, keep, gb.TimeMin); err != nil {
		return fmt.Errorf("deletegooglemissing: userID[%s]: %w", gb.UserID, err)
	}

	return nil
}

// DeleteGoogle removes every imported Google event of the user.
func (c *Core) DeleteGoogle(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.AddSpan(ctx, "business.eventbus.deletegoogle")
	defer span.End()

	if err := c.storer.DeleteGoogleByUser(ctx, userID); err != nil {
		return fmt.Errorf("deletegooglebyuser: userID[%s]: %w", userID, err)
	}

	return nil
}
