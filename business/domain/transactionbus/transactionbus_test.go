package transactionbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/business/types/txtype"
)

type memStore struct {
	mu   sync.Mutex
	trxs map[uuid.UUID]transactionbus.Transaction
}

func (m *memStore) NewWithTx(tx sqldb.CommitRollbacker) (transactionbus.Storer, error) { return m, nil }

func (m *memStore) Create(ctx context.Context, trx transactionbus.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trxs[trx.ID] = trx
	return nil
}

func (m *memStore) Update(ctx context.Context, trx transactionbus.Transaction, version time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.trxs[trx.ID]
	if !ok || !cur.UpdatedAt.Equal(version) {
		return transactionbus.ErrConflict
	}
	m.trxs[trx.ID] = trx
	return nil
}

func (m *memStore) Delete(ctx context.Context, trx transactionbus.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trxs, trx.ID)
	return nil
}

func (m *memStore) QueryByID(ctx context.Context, transactionID uuid.UUID) (transactionbus.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trx, ok := m.trxs[transactionID]
	if !ok {
		return transactionbus.Transaction{}, transactionbus.ErrNotFound
	}
	return trx, nil
}

func (m *memStore) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trxs []transactionbus.Transaction
	for _, trx := range m.trxs {
		if trx.OwnerID == ownerID {
			trxs = append(trxs, trx)
		}
	}
	return trxs, nil
}

// =============================================================================

func Test_Create(t *testing.T) {
	ctx := context.Background()
	core := transactionbus.NewCore(&memStore{trxs: make(map[uuid.UUID]transactionbus.Transaction)})

	t.Run("zero-amount", func(t *testing.T) {
		_, err := core.Create(ctx, transactionbus.NewTransaction{OwnerID: uuid.New(), Amount: 0, Type: txtype.Income})
		if !errors.Is(err, transactionbus.ErrInvalidAmount) {
			t.Errorf("got %v, want %v", err, transactionbus.ErrInvalidAmount)
		}
	})

	t.Run("business-date", func(t *testing.T) {
		when := time.Date(2026, 5, 17, 22, 45, 0, 0, time.UTC)

		trx, err := core.Create(ctx, transactionbus.NewTransaction{
			OwnerID:     uuid.New(),
			Description: "Consulting",
			Amount:      1500,
			Type:        txtype.Income,
			Date:        when,
			Category:    "services",
		})
		if err != nil {
			t.Fatalf("Should be able to create a transaction: %s", err)
		}

		exp := time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)
		if !trx.Date.Equal(exp) {
			t.Errorf("got date %s, want %s", trx.Date, exp)
		}
	})
}

func Test_Update(t *testing.T) {
	ctx := context.Background()
	core := transactionbus.NewCore(&memStore{trxs: make(map[uuid.UUID]transactionbus.Transaction)})

	trx, err := core.Create(ctx, transactionbus.NewTransaction{OwnerID: uuid.New(), Amount: 80, Type: txtype.Expense})
	if err != nil {
		t.Fatalf("Should be able to create a transaction: %s", err)
	}

	neg := -10.0
	if _, err := core.Update(ctx, trx, transactionbus.UpdateTransaction{Amount: &neg}); !errors.Is(err, transactionbus.ErrInvalidAmount) {
		t.Errorf("got %v, want %v", err, transactionbus.ErrInvalidAmount)
	}

	amount := 95.5
	version := trx.UpdatedAt
	upd, err := core.Update(ctx, trx, transactionbus.UpdateTransaction{Amount: &amount, Version: &version})
	if err != nil {
		t.Fatalf("Should be able to update: %s", err)
	}
	if upd.Amount != amount {
		t.Errorf("got amount %v, want %v", upd.Amount, amount)
	}

	if _, err := core.Update(ctx, upd, transactionbus.UpdateTransaction{Amount: &amount, Version: &version}); !errors.Is(err, transactionbus.ErrConflict) {
		t.Errorf("got %v, want %v", err, transactionbus.ErrConflict)
	}
}

func Test_Summarize(t *testing.T) {
	trxs := []transactionbus.Transaction{
		{Amount: 1000, Type: txtype.Income},
		{Amount: 250.5, Type: txtype.Expense},
		{Amount: 500, Type: txtype.Income},
		{Amount: 49.5, Type: txtype.Expense},
	}

	got := transactionbus.Summarize(trxs)

	if got.Income != 1500 || got.Expense != 300 {
		t.Errorf("got income %v expense %v, want 1500 300", got.Income, got.Expense)
	}
	if got.Balance() != 1200 {
		t.Errorf("got balance %v, want 1200", got.Balance())
	}
}
