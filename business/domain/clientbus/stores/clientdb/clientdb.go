// Package clientdb contains client related CRUD functionality.
package clientdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/clientbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for client database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (clientbus.Storer, error) {
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

// Create adds a Client to the database.
func (s *Store) Create(ctx context.Context, cln clientbus.Client) error {
	const q = `
	INSERT INTO clients
		(client_id, owner_id, name, email, phone, observations, created_at, updated_at)
	VALUES
		(:client_id, :owner_id, :name, :email, :phone, :observations, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBClient(cln)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a client in the database as long as nobody changed it
// since version.
func (s *Store) Update(ctx context.Context, cln clientbus.Client, version time.Time) error {
	const q = `
	UPDATE
		clients
	SET
		name = :name,
		email = :email,
		phone = :phone,
		observations = :observations,
		updated_at = :updated_at
	WHERE
		client_id = :client_id AND updated_at = :version`

	data := struct {
		clientDB
		Version time.Time `db:"version"`
	}{
		clientDB: toDBClient(cln),
		Version:  version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return clientbus.ErrConflict
	}

	return nil
}

// Delete removes the client identified by a given ID.
func (s *Store) Delete(ctx context.Context, cln clientbus.Client) error {
	data := struct {
		ID string `db:"client_id"`
	}{
		ID: cln.ID.String(),
	}

	const q = `DELETE FROM clients WHERE client_id = :client_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the client identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, clientID uuid.UUID) (clientbus.Client, error) {
	data := struct {
		ID string `db:"client_id"`
	}{
		ID: clientID.String(),
	}

	const q = `
	SELECT
		client_id, owner_id, name, email, phone, observations, created_at, updated_at
	FROM
		clients
	WHERE
		client_id = :client_id`

	var dbCln clientDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbCln); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return clientbus.Client{}, fmt.Errorf("db: %w", clientbus.ErrNotFound)
		}
		return clientbus.Client{}, fmt.Errorf("db: %w", err)
	}

	return toBusClient(dbCln)
}

// QueryByOwner retrieves the tenant's clients, newest first.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]clientbus.Client, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		client_id, owner_id, name, email, phone, observations, created_at, updated_at
	FROM
		clients
	WHERE
		owner_id = :owner_id
	ORDER BY
		created_at DESC`

	var dbClns []clientDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbClns); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusClients(dbClns)
}
