// Package usercache contains user related CRUD functionality with caching.
package usercache

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/order"
	"github.com/jcpaschoal/jhgestor/business/sdk/page"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/viccon/sturdyc"
)

// Store manages the set of APIs for user data and caching.
type Store struct {
	log    *logger.Logger
	storer userbus.Storer
	cache  *sturdyc.Client[userbus.User]
}

// NewStore constructs the api for data and caching access.
func NewStore(log *logger.Logger, storer userbus.Storer, ttl time.Duration) *Store {
	const capacity = 10000
	const numShards = 10
	const evictionPercentage = 10

	return &Store{
		log:    log,
		storer: storer,
		cache:  sturdyc.New[userbus.User](capacity, numShards, ttl, evictionPercentage),
	}
}

// NewWithTx constructs a new Store value replacing the storer with one bound
// to the transaction. The cache is shared.
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
	storer, err := s.storer.NewWithTx(tx)
	if err != nil {
		return nil, err
	}

	store := Store{
		log:    s.log,
		storer: storer,
		cache:  s.cache,
	}

	return &store, nil
}

// Create inserts a new user into the database and the cache.
func (s *Store) Create(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Create(ctx, usr); err != nil {
		return err
	}

	s.writeCache(usr)

	return nil
}

// Update replaces a user in the database. The cached copy is dropped rather
// than replaced since the write may still be rolled back.
func (s *Store) Update(ctx context.Context, usr userbus.User, version time.Time) error {
	if err := s.storer.Update(ctx, usr, version); err != nil {
		return err
	}

	if old, exists := s.readCache(usr.ID.String()); exists {
		s.deleteCache(old)
	}
	s.deleteCache(usr)

	return nil
}

// Delete removes a user from the database and the cache.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	if err := s.storer.Delete(ctx, usr); err != nil {
		return err
	}

	s.deleteCache(usr)

	return nil
}

// QueryByID gets the specified user from the cache or the database.
func (s *Store) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	if usr, exists := s.readCache(userID.String()); exists {
		return usr, nil
	}

	usr, err := s.storer.QueryByID(ctx, userID)
	if err != nil {
		return userbus.User{}, err
	}

	s.writeCache(usr)

	return usr, nil
}

// QueryByEmail gets the specified user from the cache or the database.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	if usr, exists := s.readCache(email.Address); exists {
		return usr, nil
	}

	usr, err := s.storer.QueryByEmail(ctx, email)
	if err != nil {
		return userbus.User{}, err
	}

	s.writeCache(usr)

	return usr, nil
}

// QueryByOwner reads through to the database.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	return s.storer.QueryByOwner(ctx, ownerID)
}

// QueryByStripeCustomer reads through to the database.
func (s *Store) QueryByStripeCustomer(ctx context.Context, customerID string) (userbus.User, error) {
	return s.storer.QueryByStripeCustomer(ctx, customerID)
}

// QueryByStripeSubscription reads through to the database.
func (s *Store) QueryByStripeSubscription(ctx context.Context, subscriptionID string) (userbus.User, error) {
	return s.storer.QueryByStripeSubscription(ctx, subscriptionID)
}

// QueryOwners reads through to the database.
func (s *Store) QueryOwners(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	return s.storer.QueryOwners(ctx, filter, orderBy, page)
}

// CountOwners reads through to the database.
func (s *Store) CountOwners(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	return s.storer.CountOwners(ctx, filter)
}

// CreateIdentity passes through; credentials are never cached.
func (s *Store) CreateIdentity(ctx context.Context, idn userbus.Identity) error {
	return s.storer.CreateIdentity(ctx, idn)
}

// UpdateIdentity passes through.
func (s *Store) UpdateIdentity(ctx context.Context, idn userbus.Identity) error {
	return s.storer.UpdateIdentity(ctx, idn)
}

// DeleteIdentity passes through.
func (s *Store) DeleteIdentity(ctx context.Context, idn userbus.Identity) error {
	return s.storer.DeleteIdentity(ctx, idn)
}

// QueryIdentityByEmail passes through.
func (s *Store) QueryIdentityByEmail(ctx context.Context, email mail.Address) (userbus.Identity, error) {
	return s.storer.QueryIdentityByEmail(ctx, email)
}

// QueryIdentityByID passes through.
func (s *Store) QueryIdentityByID(ctx context.Context, identityID uuid.UUID) (userbus.Identity, error) {
	return s.storer.QueryIdentityByID(ctx, identityID)
}

// =============================================================================

func (s *Store) readCache(key string) (userbus.User, bool) {
	return s.cache.Get(key)
}

func (s *Store) writeCache(bus userbus.User) {
	s.cache.Set(bus.ID.String(), bus)
	s.cache.Set(bus.Email.Address, bus)
}

func (s *Store) deleteCache(bus userbus.User) {
	s.cache.Delete(bus.ID.String())
	s.cache.Delete(bus.Email.Address)
}
