package clientdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/types/name"
	"github.com/jcpaschoal/jhgestor/business/types/phone"
)

type clientDB struct {
	ID           uuid.UUID      `db:"client_id"`
	OwnerID      uuid.UUID      `db:"owner_id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Phone        sql.NullString `db:"phone"`
	Observations string         `db:"observations"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toDBClient(bus clientbus.Client) clientDB {
	return clientDB{
		ID:           bus.ID,
		OwnerID:      bus.OwnerID,
		Name:         bus.Name.String(),
		Email:        bus.Email,
		Phone:        phone.ToSQLNullString(bus.Phone),
		Observations: bus.Observations,
		CreatedAt:    bus.CreatedAt.UTC(),
		UpdatedAt:    bus.UpdatedAt.UTC(),
	}
}

func toBusClient(db clientDB) (clientbus.Client, error) {
	nme, err := name.Parse(db.Name)
	if err != nil {
		return clientbus.Client{}, fmt.Errorf("parse name: %w", err)
	}

	bus := clientbus.Client{
		ID:           db.ID,
		OwnerID:      db.OwnerID,
		Name:         nme,
		Email:        db.Email,
		Phone:        phone.FromSQLNullString(db.Phone),
		Observations: db.Observations,
		CreatedAt:    db.CreatedAt.UTC(),
		UpdatedAt:    db.UpdatedAt.UTC(),
	}

	return bus, nil
}

func toBusClients(dbs []clientDB) ([]clientbus.Client, error) {
	bus := make([]clientbus.Client, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusClient(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
