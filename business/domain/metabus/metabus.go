// Package metabus provides business access to the Meta ads account linked to
// a tenant.
package metabus

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/otel"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound     = errors.New("meta config not found")
	ErrMissingField = errors.New("access token and ad account are required")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Upsert(ctx context.Context, cfg Config) error
	Delete(ctx context.Context, ownerID uuid.UUID) error
	QueryByOwner(ctx context.Context, ownerID uuid.UUID) (Config, error)
}

// Core manages the set of APIs for ads account access.
type Core struct {
	storer Storer
}

// NewCore constructs a meta config core API for use.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// Save links the ads account to the tenant, replacing any previous one.
func (c *Core) Save(ctx context.Context, nc NewConfig) (Config, error) {
	ctx, span := otel.AddSpan(ctx, "business.metabus.save")
	defer span.End()

	if nc.AccessToken == "" || nc.AdAccountID == "" {
		return Config{}, ErrMissingField
	}

	cfg := Config{
		OwnerID:       nc.OwnerID,
		AccessToken:   nc.AccessToken,
		AdAccountID:   nc.AdAccountID,
		AdAccountName: nc.AdAccountName,
		UpdatedAt:     sqldb.Now(),
	}

	if err := c.storer.Upsert(ctx, cfg); err != nil {
		return Config{}, fmt.Errorf("upsert: %w", err)
	}

	return cfg, nil
}

// Clear unlinks the tenant's ads account.
func (c *Core) Clear(ctx context.Context, ownerID uuid.UUID) error {
	ctx, span := otel.AddSpan(ctx, "business.metabus.clear")
	defer span.End()

	if err := c.storer.Delete(ctx, ownerID); err != nil {
		return fmt.Errorf("delete: ownerID[%s]: %w", ownerID, err)
	}

	return nil
}

// QueryByOwner returns the tenant's ads account.
func (c *Core) QueryByOwner(ctx context.Context, ownerID uuid.UUID) (Config, error) {
	ctx, span := otel.AddSpan(ctx, "business.metabus.querybyowner")
	defer span.End()

	cfg, err := c.storer.QueryByOwner(ctx, ownerID)
	if err != nil {
		return Config{}, fmt.Errorf("query: ownerID[%s]: %w", ownerID, err)
	}

	return cfg, nil
}
