// Package supplierdb contains supplier related CRUD functionality.
package supplierdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/supplierbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for supplier database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (supplierbus.Storer, error) {
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

// Create adds a Supplier to the database.
func (s *Store) Create(ctx context.Context, sup supplierbus.Supplier) error {
	const q = `
	INSERT INTO suppliers
		(supplier_id, owner_id, name, contact, email, category, created_at, updated_at)
	VALUES
		(:supplier_id, :owner_id, :name, :contact, :email, :category, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBSupplier(sup)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a supplier in the database as long as nobody changed it
// since version.
func (s *Store) Update(ctx context.Context, sup supplierbus.Supplier, version time.Time) error {
	const q = `
	UPDATE
		suppliers
	SET
		name = :name,
		contact = :contact,
		email = :email,
		category = :category,
		updated_at = :updated_at
	WHERE
		supplier_id = :supplier_id AND updated_at = :version`

	data := struct {
		supplierDB
		Version time.Time `db:"version"`
	}{
		supplierDB: toDBSupplier(sup),
		Version:    version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return supplierbus.ErrConflict
	}

	return nil
}

// Delete removes the supplier identified by a given ID.
func (s *Store) Delete(ctx context.Context, sup supplierbus.Supplier) error {
	data := struct {
		ID string `db:"supplier_id"`
	}{
		ID: sup.ID.String(),
	}

	const q = `DELETE FROM suppliers WHERE supplier_id = :supplier_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the supplier identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, supplierID uuid.UUID) (supplierbus.Supplier, error) {
	data := struct {
		ID string `db:"supplier_id"`
	}{
		ID: supplierID.String(),
	}

	const q = `
	SELECT
		supplier_id, owner_id, name, contact, email, category, created_at, updated_at
	FROM
		suppliers
	WHERE
		supplier_id = :supplier_id`

	var dbSup supplierDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbSup); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return supplierbus.Supplier{}, fmt.Errorf("db: %w", supplierbus.ErrNotFound)
		}
		return supplierbus.Supplier{}, fmt.Errorf("db: %w", err)
	}

	return toBusSupplier(dbSup)
}

// QueryByOwner retrieves the tenant's suppliers ordered by name.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]supplierbus.Supplier, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		supplier_id, owner_id, name, contact, email, category, created_at, updated_at
	FROM
		suppliers
	WHERE
		owner_id = :owner_id
	ORDER BY
		name`

	var dbSups []supplierDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbSups); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusSuppliers(dbSups)
}
