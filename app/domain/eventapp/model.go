package eventapp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/app/sdk/errs"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
)

// Event represents a calendar entry.
type Event struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	UserID        string `json:"userId"`
	Title         string `json:"title"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Description   string `json:"description"`
	IsGoogleEvent bool   `json:"isGoogleEvent"`
	GoogleEventID string `json:"googleEventId,omitempty"`
	DateUpdated   string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (e Event) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// ToAppEvent converts an event for the wire.
func ToAppEvent(bus eventbus.Event) Event {
	return Event{
		ID:            bus.ID.String(),
		OwnerID:       bus.OwnerID.String(),
		UserID:        bus.UserID.String(),
		Title:         bus.Title,
		Start:         bus.Start.Format(time.RFC3339),
		End:           bus.End.Format(time.RFC3339),
		Description:   bus.Description,
		IsGoogleEvent: bus.IsGoogleEvent,
		GoogleEventID: bus.GoogleEventID,
		DateUpdated:   bus.UpdatedAt.Format(time.RFC3339Nano),
	}
}

// ToAppEvents converts a list of events.
func ToAppEvents(evts []eventbus.Event) []Event {
	app := make([]Event, len(evts))
	for i, evt := range evts {
		app[i] = ToAppEvent(evt)
	}
	return app
}

// =============================================================================

// NewEvent defines the data needed to add an event.
type NewEvent struct {
	Title       string `json:"title" validate:"required"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
	Description string `json:"description"`
}

// Decode implements the web.Decoder interface.
func (app *NewEvent) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewEvent) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewEvent(usr userbus.User, app NewEvent) (eventbus.NewEvent, error) {
	start, err := time.Parse(time.RFC3339, app.Start)
	if err != nil {
		return eventbus.NewEvent{}, fmt.Errorf("parse start: %w", err)
	}

	end, err := time.Parse(time.RFC3339, app.End)
	if err != nil {
		return eventbus.NewEvent{}, fmt.Errorf("parse end: %w", err)
	}

	bus := eventbus.NewEvent{
		OwnerID:     usr.OwnerID,
		UserID:      usr.ID,
		Title:       app.Title,
		Start:       start,
		End:         end,
		Description: app.Description,
	}

	return bus, nil
}

// =============================================================================

// UpdateEvent defines the data needed to update an event.
type UpdateEvent struct {
	Title       *string `json:"title"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Description *string `json:"description"`
	Version     *string `json:"version"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateEvent) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateEvent) Validate() error {
	return nil
}

func toBusUpdateEvent(app UpdateEvent) (eventbus.UpdateEvent, error) {
	parse := func(field string, v *string, layout string) (*time.Time, error) {
		if v == nil {
			return nil, nil
		}
		t, err := time.Parse(layout, *v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", field, err)
		}
		return &t, nil
	}

	start, err := parse("start", app.Start, time.RFC3339)
	if err != nil {
		return eventbus.UpdateEvent{}, err
	}

	end, err := parse("end", app.End, time.RFC3339)
	if err != nil {
		return eventbus.UpdateEvent{}, err
	}

	version, err := parse("version", app.Version, time.RFC3339Nano)
	if err != nil {
		return eventbus.UpdateEvent{}, err
	}

	bus := eventbus.UpdateEvent{
		Title:       app.Title,
		Start:       start,
		End:         end,
		Description: app.Description,
		Version:     version,
	}

	return bus, nil
}

// =============================================================================

// GoogleEvent is an event read from the user's Google calendar.
type GoogleEvent struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
	Description string `json:"description"`
}

// GoogleImport is one import of the user's calendar together with the
// authorization used to read it.
type GoogleImport struct {
	AccessToken string        `json:"accessToken" validate:"required"`
	ExpiresIn   int           `json:"expiresIn" validate:"gte=0"`
	TimeMin     string        `json:"timeMin"`
	Events      []GoogleEvent `json:"events" validate:"dive"`
}

// Decode implements the web.Decoder interface.
func (app *GoogleImport) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app GoogleImport) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

// defaultGoogleTTL applies when the import does not say how long the token
// lives.
const defaultGoogleTTL = time.Hour

func toBusGoogle(usr userbus.User, app GoogleImport, now time.Time) (userbus.GoogleLink, eventbus.GoogleBatch, error) {
	ttl := defaultGoogleTTL
	if app.ExpiresIn > 0 {
		ttl = time.Duration(app.ExpiresIn) * time.Second
	}

	link := userbus.GoogleLink{
		AccessToken: app.AccessToken,
		Expiry:      now.Add(ttl),
	}

	batch := eventbus.GoogleBatch{
		OwnerID: usr.OwnerID,
		UserID:  usr.ID,
		Events:  make([]eventbus.GoogleEvent, 0, len(app.Events)),
	}

	if app.TimeMin != "" {
		t, err := time.Parse(time.RFC3339, app.TimeMin)
		if err != nil {
			return userbus.GoogleLink{}, eventbus.GoogleBatch{}, fmt.Errorf("parse timeMin: %w", err)
		}
		batch.TimeMin = &t
	}

	for i, ge := range app.Events {
		start, err := time.Parse(time.RFC3339, ge.Start)
		if err != nil {
			return userbus.GoogleLink{}, eventbus.GoogleBatch{}, fmt.Errorf("parse events[%d].start: %w", i, err)
		}

		end, err := time.Parse(time.RFC3339, ge.End)
		if err != nil {
			return userbus.GoogleLink{}, eventbus.GoogleBatch{}, fmt.Errorf("parse events[%d].end: %w", i, err)
		}

		batch.Events = append(batch.Events, eventbus.GoogleEvent{
			GoogleEventID: ge.ID,
			Title:         ge.Title,
			Start:         start,
			End:           end,
			Description:   ge.Description,
		})
	}

	return link, batch, nil
}

// ownedBy reports whether the event belongs to the user inside their tenant.
func ownedBy(evt eventbus.Event, usr userbus.User) bool {
	return evt.OwnerID == usr.OwnerID && evt.UserID == usr.ID && evt.UserID != uuid.Nil
}
