package clientbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

type memStore struct {
	mu      sync.Mutex
	clients map[uuid.UUID]clientbus.Client
}

func newMemStore() *memStore {
	return &memStore{
		clients: make(map[uuid.UUID]clientbus.Client),
	}
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (clientbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, cln clientbus.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[cln.ID] = cln
	return nil
}

// Update mirrors the store's guarded write: the row only changes while it
// still carries the version the caller read.
func (m *memStore) Update(ctx context.Context, cln clientbus.Client, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.clients[cln.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return clientbus.ErrConflict
	}
	m.clients[cln.ID] = cln
	return nil
}

func (m *memStore) Delete(ctx context.Context, cln clientbus.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, cln.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, clientID uuid.UUID) (clientbus.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cln, ok := m.clients[clientID]
	if !ok {
		return clientbus.Client{}, clientbus.ErrNotFound
	}
	return cln, nil
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var clns []clientbus.Client
	for _, cln := range m.clients {
		if cln.OwnerID == ownerID {
			clns = append(clns, cln)
		}
	}
	return clns, nil
}

// =============================================================================

func Test_Update(t *testing.T) {
	ctx := context.Background()

	table := []struct {
		name    string
		version func(cln clientbus.Client) *time.Time
		stale   bool
		exp     error
	}{
		{"no-version", func(cln clientbus.Client) *time.Time { return nil }, false, nil},
		{"current-version", func(cln clientbus.Client) *time.Time { return &cln.UpdatedAt }, false, nil},
		{"old-version", func(cln clientbus.Client) *time.Time {
			old := cln.UpdatedAt.Add(-time.Second)
			return &old
		}, false, clientbus.ErrConflict},
		{"lost-race", func(cln clientbus.Client) *time.Time { return nil }, true, clientbus.ErrConflict},
	}

	for _, tt := range table {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			core := clientbus.NewCore(store)

			cln, err := core.Create(ctx, clientbus.NewClient{
				OwnerID: uuid.New(),
				Name:    name.MustParse("Padaria Central"),
				Email:   "contato@padaria.com",
			})
			if err != nil {
				t.Fatalf("Should be able to create a client: %s", err)
			}

			if tt.stale {
				// Someone else saved the client after we read it.
				other := "outro@padaria.com"
				if _, err := core.Update(ctx, cln, clientbus.UpdateClient{Email: &other}); err != nil {
					t.Fatalf("Should be able to update: %s", err)
				}
			}

			email := "novo@padaria.com"
			upd, err := core.Update(ctx, cln, clientbus.UpdateClient{Email: &email, Version: tt.version(cln)})
			if !errors.Is(err, tt.exp) {
				t.Fatalf("got %v, want %v", err, tt.exp)
			}
			if tt.exp != nil {
				return
			}

			if upd.Email != email {
				t.Errorf("got email %q, want %q", upd.Email, email)
			}
			if !upd.UpdatedAt.After(cln.UpdatedAt) {
				t.Errorf("Should move the version forward: %s <= %s", upd.UpdatedAt, cln.UpdatedAt)
			}

			got, err := core.QueryByID(ctx, cln.ID)
			if err != nil {
				t.Fatalf("Should be able to query: %s", err)
			}
			if !got.UpdatedAt.Equal(upd.UpdatedAt) {
				t.Errorf("Should store the new version: got %s, want %s", got.UpdatedAt, upd.UpdatedAt)
			}
		})
	}
}

func Test_Delete(t *testing.T) {
	ctx := context.Background()
	core := clientbus.NewCore(newMemStore())

	ownerID := uuid.New()

	cln, err := core.Create(ctx, clientbus.NewClient{OwnerID: ownerID, Name: name.MustParse("Mercado Bom Preço")})
	if err != nil {
		t.Fatalf("Should be able to create a client: %s", err)
	}

	if err := core.Delete(ctx, cln); err != nil {
		t.Fatalf("Should be able to delete: %s", err)
	}

	if _, err := core.QueryByID(ctx, cln.ID); !errors.Is(err, clientbus.ErrNotFound) {
		t.Errorf("got %v, want %v", err, clientbus.ErrNotFound)
	}

	clns, err := core.QueryByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if len(clns) != 0 {
		t.Errorf("got %d clients, want 0", len(clns))
	}
}
