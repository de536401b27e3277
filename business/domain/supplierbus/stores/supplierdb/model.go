package supplierdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
)

type supplierDB struct {
	ID        uuid.UUID `db:"supplier_id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Name      string    `db:"name"`
	Contact   string    `db:"contact"`
	Email     string    `db:"email"`
	Category  string    `db:"category"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toDBSupplier(bus supplierbus.Supplier) supplierDB {
	return supplierDB{
		ID:        bus.ID,
		OwnerID:   bus.OwnerID,
		Name:      bus.Name.String(),
		Contact:   bus.Contact,
		Email:     bus.Email,
		Category:  bus.Category,
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: bus.UpdatedAt.UTC(),
	}
}

func toBusSupplier(db supplierDB) (supplierbus.Supplier, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return supplierbus.Supplier{}, fmt.Errorf("parse name: %w", err)
	}

	bus := supplierbus.Supplier{
		ID:        db.ID,
		OwnerID:   db.OwnerID,
		Name:      nme,
		Contact:   db.Contact,
		Email:     db.Email,
		Category:  db.Category,
		CreatedAt: db.CreatedAt.UTC(),
		UpdatedAt: db.UpdatedAt.UTC(),
	}

	return bus, nil
}

func toBusSuppliers(dbs []supplierDB) ([]supplierbus.Supplier, error) {
	bus := make([]supplierbus.Supplier, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusSupplier(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
