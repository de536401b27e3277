// Package transactiondb contains transaction related CRUD functionality.
package transactiondb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/transactionbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

// Store manages the set of APIs for transaction database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (transactionbus.Storer, error) {
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

// Create adds a Transaction to the database.
func (s *Store) Create(ctx context.Context, trx transactionbus.Transaction) error {
	const q = `
	INSERT INTO transactions
		(transaction_id, owner_id, description, amount, type, date, category, created_at, updated_at)
	VALUES
		(:transaction_id, :owner_id, :description, :amount, :type, :date, :category, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBTransaction(trx)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a transaction in the database as long as nobody changed it
// since version.
func (s *Store) Update(ctx context.Context, trx transactionbus.Transaction, version time.Time) error {
	const q = `
	UPDATE
		transactions
	SET
		description = :description,
		amount = :amount,
		type = :type,
		date = :date,
		category = :category,
		updated_at = :updated_at
	WHERE
		transaction_id = :transaction_id AND updated_at = :version`

	data := struct {
		transactionDB
		Version time.Time `db:"version"`
	}{
		transactionDB: toDBTransaction(trx),
		Version:       version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return transactionbus.ErrConflict
	}

	return nil
}

// Delete removes the transaction identified by a given ID.
func (s *Store) Delete(ctx context.Context, trx transactionbus.Transaction) error {
	data := struct {
		ID string `db:"transaction_id"`
	}{
		ID: trx.ID.String(),
	}

	const q = `DELETE FROM transactions WHERE transaction_id = :transaction_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID finds the transaction identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, transactionID uuid.UUID) (transactionbus.Transaction, error) {
	data := struct {
		ID string `db:"transaction_id"`
	}{
		ID: transactionID.String(),
	}

	const q = `
	SELECT
		transaction_id, owner_id, description, amount, type, date, category, created_at, updated_at
	FROM
		transactions
	WHERE
		transaction_id = :transaction_id`

	var dbTrx transactionDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbTrx); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return transactionbus.Transaction{}, fmt.Errorf("db: %w", transactionbus.ErrNotFound)
		}
		return transactionbus.Transaction{}, fmt.Errorf("db: %w", err)
	}

	return toBusTransaction(dbTrx)
}

// QueryByOwner retrieves the tenant's ledger, latest business date first.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]transactionbus.Transaction, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		transaction_id, owner_id, description, amount, type, date, category, created_at, updated_at
	FROM
		transactions
	WHERE
		owner_id = :owner_id
	ORDER BY
		date DESC, created_at DESC`

	var dbTrxs []transactionDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbTrxs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusTransactions(dbTrxs)
}
