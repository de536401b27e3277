package eventbus_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/eventbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
)

type memStore struct {
	mu     sync.Mutex
	events map[uuid.UUID]eventbus.Event
}

func newMemStore() *memStore {
	return &memStore{
		events: make(map[uuid.UUID]eventbus.Event),
	}
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (eventbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, evt eventbus.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[evt.ID] = evt
	return nil
}

func (m *memStore) Update(ctx context.Context, evt eventbus.Event, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.events[evt.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return eventbus.ErrConflict
	}
	m.events[evt.ID] = evt
	return nil
}

func (m *memStore) Delete(ctx context.Context, evt eventbus.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, evt.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, eventID uuid.UUID) (eventbus.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt, ok := m.events[eventID]
	if !ok {
		return eventbus.Event{}, eventbus.ErrNotFound
	}
	return evt, nil
}

func (m *memStore) QueryByOwnerUser(ctx context.Context, ownerID uuid.UUID, userID uuid.UUID) ([]eventbus.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var evts []eventbus.Event
	for _, evt := range m.events {
		if evt.OwnerID == ownerID && evt.UserID == userID {
			evts = append(evts, evt)
		}
	}
	slices.SortFunc(evts, func(a, b eventbus.Event) int { return a.Start.Compare(b.Start) })
	return evts, nil
}

func (m *memStore) UpsertGoogle(ctx context.Context, evt eventbus.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cur := range m.events {
		if cur.UserID == evt.UserID && cur.GoogleEventID == evt.GoogleEventID {
			evt.ID = id
			evt.CreatedAt = cur.CreatedAt
			break
		}
	}
	m.events[evt.ID] = evt
	return nil
}

func (m *memStore) DeleteGoogleMissing(ctx context.Context, userID uuid.UUID, keep []string, since *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, evt := range m.events {
		if !evt.IsGoogleEvent || evt.UserID != userID || slices.Contains(keep, evt.GoogleEventID) {
			continue
		}
		if since != nil && evt.Start.Before(*since) {
			continue
		}
		delete(m.events, id)
	}
	return nil
}

func (m *memStore) DeleteGoogleByUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, evt := range m.events {
		if evt.IsGoogleEvent && evt.UserID == userID {
			delete(m.events, id)
		}
	}
	return nil
}

// =============================================================================

func Test_Range(t *testing.T) {
	ctx := context.Background()
	core := eventbus.NewCore(newMemStore())

	start := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	_, err := core.Create(ctx, eventbus.NewEvent{
		OwnerID: uuid.New(),
		UserID:  uuid.New(),
		Title:   "Meeting",
		Start:   start,
		End:     start.Add(-time.Hour),
	})
	if !errors.Is(err, eventbus.ErrInvalidRange) {
		t.Errorf("got %v, want %v", err, eventbus.ErrInvalidRange)
	}

	evt, err := core.Create(ctx, eventbus.NewEvent{
		OwnerID: uuid.New(),
		UserID:  uuid.New(),
		Title:   "Meeting",
		Start:   start,
		End:     start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Should be able to create an event: %s", err)
	}

	early := start.Add(-2 * time.Hour)
	_, err = core.Update(ctx, evt, eventbus.UpdateEvent{End: &early})
	if !errors.Is(err, eventbus.ErrInvalidRange) {
		t.Errorf("got %v, want %v", err, eventbus.ErrInvalidRange)
	}
}

func Test_MergeGoogle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	core := eventbus.NewCore(store)

	ownerID := uuid.New()
	userID := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	local, err := core.Create(ctx, eventbus.NewEvent{OwnerID: ownerID, UserID: userID, Title: "Local", Start: start, End: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Should be able to create an event: %s", err)
	}

	first := eventbus.GoogleBatch{
		OwnerID: ownerID,
		UserID:  userID,
		Events: []eventbus.GoogleEvent{
			{GoogleEventID: "g1", Title: "Standup", Start: start, End: start.Add(15 * time.Minute)},
			{GoogleEventID: "g2", Title: "Lunch", Start: start.Add(3 * time.Hour), End: start.Add(4 * time.Hour)},
			{Title: "no id", Start: start, End: start},
		},
	}
	if err := core.MergeGoogle(ctx, first); err != nil {
		t.Fatalf("Should be able to merge: %s", err)
	}

	evts, err := core.QueryByOwnerUser(ctx, ownerID, userID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if len(evts) != 3 {
		t.Fatalf("got %d events, want 3", len(evts))
	}

	second := eventbus.GoogleBatch{
		OwnerID: ownerID,
		UserID:  userID,
		Events: []eventbus.GoogleEvent{
			{GoogleEventID: "g1", Title: "Daily", Start: start, End: start.Add(15 * time.Minute)},
		},
	}
	if err := core.MergeGoogle(ctx, second); err != nil {
		t.Fatalf("Should be able to merge again: %s", err)
	}

	evts, err = core.QueryByOwnerUser(ctx, ownerID, userID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}

	var titles []string
	for _, evt := range evts {
		titles = append(titles, evt.Title)
	}
	slices.Sort(titles)
	if !slices.Equal(titles, []string{"Daily", "Local"}) {
		t.Errorf("got %v, want [Daily Local]", titles)
	}

	var google eventbus.Event
	for _, evt := range evts {
		if evt.IsGoogleEvent {
			google = evt
		}
	}
	title := "Renamed"
	if _, err := core.Update(ctx, google, eventbus.UpdateEvent{Title: &title}); !errors.Is(err, eventbus.ErrGoogleEvent) {
		t.Errorf("got %v, want %v", err, eventbus.ErrGoogleEvent)
	}

	if err := core.DeleteGoogle(ctx, userID); err != nil {
		t.Fatalf("Should be able to disconnect: %s", err)
	}
	evts, err = core.QueryByOwnerUser(ctx, ownerID, userID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if len(evts) != 1 || evts[0].ID != local.ID {
		t.Errorf("Should keep only the local event, got %d events", len(evts))
	}
}

func Test_MergeGoogleWindow(t *testing.T) {
	ctx := context.Background()
	core := eventbus.NewCore(newMemStore())

	ownerID := uuid.New()
	userID := uuid.New()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	err := core.MergeGoogle(ctx, eventbus.GoogleBatch{
		OwnerID: ownerID,
		UserID:  userID,
		Events: []eventbus.GoogleEvent{
			{GoogleEventID: "old", Title: "Past", Start: start.AddDate(0, -1, 0), End: start.AddDate(0, -1, 0)},
			{GoogleEventID: "new", Title: "Future", Start: start, End: start},
		},
	})
	if err != nil {
		t.Fatalf("Should be able to merge: %s", err)
	}

	// Events before the window are left alone even when the batch omits them.
	err = core.MergeGoogle(ctx, eventbus.GoogleBatch{
		OwnerID: ownerID,
		UserID:  userID,
		TimeMin: &start,
	})
	if err != nil {
		t.Fatalf("Should be able to merge: %s", err)
	}

	evts, err := core.QueryByOwnerUser(ctx, ownerID, userID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if len(evts) != 1 || evts[0].GoogleEventID != "old" {
		t.Errorf("Should keep only the event before the window, got %d events", len(evts))
	}
}
