package supplierbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

type memStore struct {
	mu   sync.Mutex
	sups map[uuid.UUID]supplierbus.Supplier
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (supplierbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, sup supplierbus.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sups[sup.ID] = sup
	return nil
}

func (m *memStore) Update(ctx context.Context, sup supplierbus.Supplier, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.sups[sup.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return supplierbus.ErrConflict
	}
	m.sups[sup.ID] = sup
	return nil
}

func (m *memStore) Delete(ctx context.Context, sup supplierbus.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sups, sup.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, supplierID uuid.UUID) (supplierbus.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sup, ok := m.sups[supplierID]
	if !ok {
		return supplierbus.Supplier{}, supplierbus.ErrNotFound
	}
	return sup, nil
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sups []supplierbus.Supplier
	for _, sup := range m.sups {
		if sup.OwnerID == ownerID {
			sups = append(sups, sup)
		}
	}
	return sups, nil
}

// =============================================================================

func Test_Update(t *testing.T) {
	ctx := context.Background()
	core := supplierbus.NewCore(&memStore{sups: make(map[uuid.UUID]supplierbus.Supplier)})

	sup, err := core.Create(ctx, supplierbus.NewSupplier{
		OwnerID:  uuid.New(),
		Name:     name.MustParse("Distribuidora Sul"),
		Category: "embalagens",
	})
	if err != nil {
		t.Fatalf("Should be able to create a supplier: %s", err)
	}

	read := sup.UpdatedAt

	contact := "Marcos"
	upd, err := core.Update(ctx, sup, supplierbus.UpdateSupplier{Contact: &contact, Version: &read})
	if err != nil {
		t.Fatalf("Should be able to update with the version read: %s", err)
	}
	if upd.Contact != contact || upd.Category != "embalagens" {
		t.Errorf("Should apply only the set fields, got %+v", upd)
	}

	t.Run("stale-version", func(t *testing.T) {
		category := "limpeza"
		_, err := core.Update(ctx, upd, supplierbus.UpdateSupplier{Category: &category, Version: &read})
		if !errors.Is(err, supplierbus.ErrConflict) {
			t.Errorf("got %v, want %v", err, supplierbus.ErrConflict)
		}
	})

	t.Run("stale-row", func(t *testing.T) {
		category := "limpeza"
		_, err := core.Update(ctx, sup, supplierbus.UpdateSupplier{Category: &category})
		if !errors.Is(err, supplierbus.ErrConflict) {
			t.Errorf("got %v, want %v", err, supplierbus.ErrConflict)
		}
	})

	got, err := core.QueryByID(ctx, sup.ID)
	if err != nil {
		t.Fatalf("Should be able to query: %s", err)
	}
	if got.Category != "embalagens" {
		t.Errorf("Should keep the winning write, got category %q", got.Category)
	}
}
