package transactiondb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/types/txtype"
)

type transactionDB struct {
	ID          uuid.UUID `db:"transaction_id"`
	OwnerID     uuid.UUID `db:"owner_id"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`
	Type        string    `db:"type"`
	Date        time.Time `db:"date"`
	Category    string    `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toDBTransaction(bus transactionbus.Transaction) transactionDB {
	return transactionDB{
		ID:          bus.ID,
		OwnerID:     bus.OwnerID,
		Description: bus.Description,
		Amount:      bus.Amount,
		Type:        bus.Type.String(),
		Date:        bus.Date.UTC(),
		Category:    bus.Category,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusTransaction(db transactionDB) (transactionbus.Transaction, error) {
	typ, err := txtype.Parse(db.Type)
	if err != nil {
		return transactionbus.Transaction{}, fmt.Errorf("parse type: %w", err)
	}

	bus := transactionbus.Transaction{
		ID:          db.ID,
		OwnerID:     db.OwnerID,
		Description: db.Description,
		Amount:      db.Amount,
		Type:        typ,
		Date:        db.Date.UTC(),
		Category:    db.Category,
		CreatedAt:   db.CreatedAt.UTC(),
		UpdatedAt:   db.UpdatedAt.UTC(),
	}

	return bus, nil
}

func toBusTransactions(dbs []transactionDB) ([]transactionbus.Transaction, error) {
	bus := make([]transactionbus.Transaction, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusTransaction(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
