// Package clientbus provides business access to the tenant's clients.
package clientbus

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
	ErrNotFound = errors.New("client not found")
	ErrConflict = errors.New("client was changed by someone else")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	NewWithTx(tx sqldb.CommitRollbacker) (Storer, error)
	Create(ctx context.Context, cln Client) error
	Update(ctx context.Context, cln Client, version time.Time) error
	Delete(ctx context.Context, cln Client) error
	QueryByID(ctx context.Context, clientID uuid.UUID) (Client, error)
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Client, error)
}

// Core manages the set of APIs for client access.
type Core struct {
	storer Storer
}

// NewCore constructs a client core API for use.
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

// Create adds a new client to the tenant.
func (c *Core) Create(ctx context.Context, nc NewClient) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.create")
	defer span.End()

	now := sqldb.Now()

	cln := Client{
		ID:           uuid.New(),
		OwnerID:      nc.OwnerID,
		Name:         nc.Name,
		Email:        nc.Email,
		Phone:        nc.Phone,
		Observations: nc.Observations,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storer.Create(ctx, cln); err != nil {
		return Client{}, fmt.Errorf("create: %w", err)
	}

	return cln, nil
}

// Update modifies information about a client.
func (c *Core) Update(ctx context.Context, cln Client, uc UpdateClient) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.update")
	defer span.End()

	if uc.Version != nil && !uc.Version.Equal(cln.UpdatedAt) {
		return Client{}, fmt.Errorf("version: clientID[%s]: %w", cln.ID, ErrConflict)
	}

	if uc.Name != nil {
		cln.Name = *uc.Name
	}

	if uc.Email != nil {
		cln.Email = *uc.Email
	}

	if uc.Phone != nil {
		cln.Phone = *uc.Phone
	}

	if uc.Observations != nil {
		cln.Observations = *uc.Observations
	}

	version := cln.UpdatedAt
	cln.UpdatedAt = sqldb.NextVersion(version)

	if err := c.storer.Update(ctx, cln, version); err != nil {
		return Client{}, fmt.Errorf("update: %w", err)
	}

	return cln, nil
}

// Delete removes the specified client.
func (c *Core) Delete(ctx context.Context, cln Client) error {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, cln); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// QueryByID finds the client by the specified ID.
func (c *Core) QueryByID(ctx context.Context, clientID uuid.UUID) (Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.querybyid")
	defer span.End()

	cln, err := c.storer.QueryByID(ctx, clientID)
	if err != nil {
		return Client{}, fmt.Errorf("query: clientID[%s]: %w", clientID, err)
	}

	return cln, nil
}

// QueryByOwner returns the tenant's clients, newest first.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]Client, error) {
	ctx, span := otel.AddSpan(ctx, "business.clientbus.querybyowner")
	defer span.End()

	clns, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return clns, nil
}
