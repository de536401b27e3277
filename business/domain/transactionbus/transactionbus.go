// Package transactionbus provides business access to the tenant's financial
// ledger.
package transactionbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound      = errors.New("transaction not found")
	ErrConflict      = errors.New("transaction was changed by someone else")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, trx Transaction) error
	Update(ctx context.Context, trx Transaction, version time.Time) error
	Delete(ctx context.Context, trx Transaction) error
	QueryByID(ctx context.Context, transactionID uuid.UUID) (Transaction, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Transaction, error)
}

// Core manages the set of APIs for transaction access.
type Core struct {
	storer Storer
}

// NewCore constructs a transaction core API for use.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// NewWithTx constructs a new core value that will use the specified
// transaction in any store related calls.
func (c *Core) NewWithTx(tx sqldb.CommitRollbacker) (*Core, error) {
	storer, err := c.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	return NewCore(storer), nil
}

// Create records a new transaction.
func (c *Core) Create(ctx context.Context, nt NewTransaction) (Transaction, error) {
	ctx, span := otel.AddSpan(ctx, "business.transactionbus.create")
	defer span.End()

	if nt.Amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	now := sqldb.Now()

	trx := Transaction{
		ID:          uuid.New(),
		OwnerID:     nt.OwnerID,
		Description: nt.Description,
		Amount:      nt.Amount,
		Type:        nt.Type,
		Date:        businessDate(nt.Date),
		Category:    nt.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, trx); err != nil {
		return Transaction{}, fmt.Errorf("create: %w", err)
	}

	return trx, nil
}

// Update modifies information about a transaction.
func (c *Core) Update(ctx context.Context, trx Transaction, ut UpdateTransaction) (Transaction, error) {
	ctx, span := otel.AddSpan(ctx, "business.transactionbus.update")
	defer span.End()

	if ut.Version != nil && !ut.Version.Equal(trx.UpdatedAt) {
		return Transaction{}, fmt.Errorf("version: transactionID[%s]: %w", trx.ID, ErrConflict)
	}

	if ut.Description != nil {
		trx.Description = *ut.Description
	}

	if ut.Amount != nil {
		if *ut.Amount <= 0 {
			return Transaction{}, ErrInvalidAmount
		}
		trx.Amount = *ut.Amount
	}

	if ut.Type != nil {
		trx.Type = *ut.Type
	}

	if ut.Date != nil {
		trx.Date = businessDate(*ut.Date)
	}

	if ut.Category != nil {
		trx.Category = *ut.Category
	}

	version := trx.UpdatedAt
	trx.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, trx, version); err != nil {
		return Transaction{}, fmt.Errorf("update: %w", err)
	}

	return trx, nil
}

// Delete removes the specified transaction.
func (c *Core) Delete(ctx context.Context, trx Transaction) error {
	ctx, span := otel.AddSpan(ctx, "business.transactionbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, trx); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the transaction by the specified ID.
func (c *Core) QueryByID(ctx context.Context, transactionID uuid.UUID) (Transaction, error) {
	ctx, span := otel.AddSpan(ctx, "business.transactionbus.querybyid")
	defer span.End()

	trx, err := c.storer.QueryByID(ctx, transactionID)
	if err != nil {
		return Transaction{}, fmt.Errorf("query: transactionID[%s]: %w", transactionID, err)
	}

	return trx, nil
}

// QueryByOwner returns the tenant's ledger, latest business date first.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Transaction, error) {
	ctx, span := otel.AddSpan(ctx, "business.transactionbus.querybyowner")
	defer span.End()

	trxs, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return trxs, nil
}

// businessDate drops the clock part; the ledger only tracks days.
func businessDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
