// Package metadb contains meta ads account related CRUD functionality.
package metadb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/metabus"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

type configDB struct {
	OwnerID       uuid.UUID `db:"owner_id"`
	AccessToken   string    `db:"access_token"`
	AdAccountID   string    `db:"ad_account_id"`
	AdAccountName string    `db:"ad_account_name"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Store manages the set of APIs for meta config database access.
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

// Upsert stores the tenant's ads account.
func (s *Store) Upsert(ctx context.Context, cfg metabus.Config) error {
	const q = `
	INSERT INTO meta_configs
		(owner_id, access_token, ad_account_id, ad_account_name, updated_at)
	VALUES
		(:owner_id, :access_token, :ad_account_id, :ad_account_name, :updated_at)
	ON CONFLICT (owner_id) DO UPDATE SET
		access_token = EXCLUDED.access_token,
		ad_account_id = EXCLUDED.ad_account_id,
		ad_account_name = EXCLUDED.ad_account_name,
		updated_at = EXCLUDED.updated_at`

	dbCfg := configDB{
		OwnerID:       cfg.OwnerID,
		AccessToken:   cfg.AccessToken,
		AdAccountID:   cfg.AdAccountID,
		AdAccountName: cfg.AdAccountName,
		UpdatedAt:     cfg.UpdatedAt.UTC(),
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbCfg); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Delete removes the tenant's ads account.
func (s *Store) Delete(ctx context.Context, ownerID uuid.UUID) error {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `DELETE FROM meta_configs WHERE owner_id = :owner_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByOwner finds the tenant's ads account.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) (metabus.Config, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `
	SELECT
		owner_id, access_token, ad_account_id, ad_account_name, updated_at
	FROM
		meta_configs
	WHERE
		owner_id = :owner_id`

	var dbCfg configDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbCfg); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return metabus.Config{}, fmt.Errorf("db: %w", metabus.ErrNotFound)
		}
		return metabus.Config{}, fmt.Errorf("db: %w", err)
	}

	cfg := metabus.Config{
		OwnerID:       dbCfg.OwnerID,
		AccessToken:   dbCfg.AccessToken,
		AdAccountID:   dbCfg.AdAccountID,
		AdAccountName: dbCfg.AdAccountName,
		UpdatedAt:     dbCfg.UpdatedAt.UTC(),
	}

	return cfg, nil
}
