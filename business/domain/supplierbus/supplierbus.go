// Package supplierbus provides business access to the tenant's suppliers.
package supplierbus

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
	ErrNotFound = errors.New("supplier not found")
	ErrConflict = errors.New("supplier was changed by someone else")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, sup Supplier) error
	Update(ctx context.Context, sup Supplier, version time.Time) error
	Delete(ctx context.Context, sup Supplier) error
	QueryByID(ctx context.Context, supplierID uuid.UUID) (Supplier, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Supplier, error)
}

// Core manages the set of APIs for supplier access.
type Core struct {
	storer Storer
}

// NewCore constructs a supplier core API for use.
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

// Create adds a new supplier.
func (c *Core) Create(ctx context.Context, ns NewSupplier) (Supplier, error) {
	ctx, span := otel.AddSpan(ctx, "business.supplierbus.create")
	defer span.End()

	now := sqldb.Now()

	sup := Supplier{
		ID:        uuid.New(),
		OwnerID:   ns.OwnerID,
		Name:      ns.Name,
		Contact:   ns.Contact,
		Email:     ns.Email,
		Category:  ns.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storer.Create(ctx, sup); err != nil {
		return Supplier{}, fmt.Errorf("create: %w", err)
	}

	return sup, nil
}

// Update modifies information about a supplier.
func (c *Core) Update(ctx context.Context, sup Supplier, us UpdateSupplier) (Supplier, error) {
	ctx, span := otel.AddSpan(ctx, "business.supplierbus.update")
	defer span.End()

	if us.Version != nil && !us.Version.Equal(sup.UpdatedAt) {
		return Supplier{}, fmt.Errorf("version: supplierID[%s]: %w", sup.ID, ErrConflict)
	}

	if us.Name != nil {
		sup.Name = *us.Name
	}

	if us.Contact != nil {
		sup.Contact = *us.Contact
	}

	if us.Email != nil {
		sup.Email = *us.Email
	}

	if us.Category != nil {
		sup.Category = *us.Category
	}

	version := sup.UpdatedAt
	sup.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, sup, version); err != nil {
		return Supplier{}, fmt.Errorf("update: %w", err)
	}

	return sup, nil
}

// Delete removes the specified supplier.
func (c *Core) Delete(ctx context.Context, sup Supplier) error {
	ctx, span := otel.AddSpan(ctx, "business.supplierbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, sup); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the supplier by the specified ID.
func (c *Core) QueryByID(ctx context.Context, supplierID uuid.UUID) (Supplier, error) {
	ctx, span := otel.AddSpan(ctx, "business.supplierbus.querybyid")
	defer span.End()

	sup, err := c.storer.QueryByID(ctx, supplierID)
	if err != nil {
		return Supplier{}, fmt.Errorf("query: supplierID[%s]: %w", supplierID, err)
	}

	return sup, nil
}

// QueryByOwner returns the tenant's suppliers ordered by name.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Supplier, error) {
	ctx, span := otel.AddSpan(ctx, "business.supplierbus.querybyowner")
	defer span.End()

	sups, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return sups, nil
}
