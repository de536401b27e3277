// Package userdb contains user related CRUD functionality.
package userdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/sdk/order"
	"github.com/jcpaschoal/jhgestor/business/sdk/page"
	"github.com/jcpaschoal/jhgestor/business/sdk/sqldb"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
	"github.com/jmoiron/sqlx"
)

const userColumns = `
	u.user_id, u.owner_id, u.name, u.email, u.role, u.avatar, u.status, u.plan, u.trial_ends_at,
	u.stripe_customer_id, u.stripe_subscription_id, u.google_calendar_connected,
	u.google_access_token, u.google_token_expiry, u.created_at, u.updated_at`

// Store manages the set of APIs for user database access.
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
func (s *Store) NewWithTx(tx sqldb.CommitRollbacker) (userbus.Storer, error) {
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

// Create inserts a new user profile into the database.
func (s *Store) Create(ctx context.Context, usr userbus.User) error {
	const q = `
	INSERT INTO users
		(user_id, owner_id, name, email, role, avatar, status, plan, trial_ends_at,
		stripe_customer_id, stripe_subscription_id, google_calendar_connected,
		google_access_token, google_token_expiry, created_at, updated_at)
	VALUES
		(:user_id, :owner_id, :name, :email, :role, :avatar, :status, :plan, :trial_ends_at,
		:stripe_customer_id, :stripe_subscription_id, :google_calendar_connected,
		:google_access_token, :google_token_expiry, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		if isUniqueEmail(err) {
			return fmt.Errorf("namedexeccontext: %w", userbus.ErrUniqueEmail)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update replaces a user profile in the database as long as nobody changed
// it since version.
func (s *Store) Update(ctx context.Context, usr userbus.User, version time.Time) error {
	const q = `
	UPDATE
		users
	SET
		owner_id = :owner_id,
		name = :name,
		email = :email,
		role = :role,
		avatar = :avatar,
		status = :status,
		plan = :plan,
		trial_ends_at = :trial_ends_at,
		stripe_customer_id = :stripe_customer_id,
		stripe_subscription_id = :stripe_subscription_id,
		google_calendar_connected = :google_calendar_connected,
		google_access_token = :google_access_token,
		google_token_expiry = :google_token_expiry,
		updated_at = :updated_at
	WHERE
		user_id = :user_id AND updated_at = :version`

	data := struct {
		userDB
		Version time.Time `db:"version"`
	}{
		userDB:  toDBUser(usr),
		Version: version.UTC(),
	}

	rows, err := sqldb.NamedExecContextCount(ctx, s.log, s.db, q, data)
	if err != nil {
		if isUniqueEmail(err) {
			return userbus.ErrUniqueEmail
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if rows == 0 {
		return userbus.ErrConflict
	}

	return nil
}

// Delete removes a user profile from the database.
func (s *Store) Delete(ctx context.Context, usr userbus.User) error {
	const q = `
	DELETE FROM
		users
	WHERE
		user_id = :user_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryByID gets the specified user from the database.
func (s *Store) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	data := struct {
		ID string `db:"user_id"`
	}{
		ID: userID.String(),
	}

	const q = `SELECT` + userColumns + ` FROM users AS u WHERE u.user_id = :user_id`

	return s.queryOne(ctx, q, data)
}

// QueryByEmail gets the specified user from the database by email.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	data := struct {
		Email string `db:"email"`
	}{
		Email: email.Address,
	}

	const q = `SELECT` + userColumns + ` FROM users AS u WHERE u.email = :email`

	return s.queryOne(ctx, q, data)
}

// QueryByStripeCustomer gets the user billed under the customer id.
func (s *Store) QueryByStripeCustomer(ctx context.Context, customerID string) (userbus.User, error) {
	data := struct {
		CustomerID string `db:"stripe_customer_id"`
	}{
		CustomerID: customerID,
	}

	const q = `SELECT` + userColumns + ` FROM users AS u WHERE u.stripe_customer_id = :stripe_customer_id`

	return s.queryOne(ctx, q, data)
}

// QueryByStripeSubscription gets the user holding the subscription id.
func (s *Store) QueryByStripeSubscription(ctx context.Context, subscriptionID string) (userbus.User, error) {
	data := struct {
		SubscriptionID string `db:"stripe_subscription_id"`
	}{
		SubscriptionID: subscriptionID,
	}

	const q = `SELECT` + userColumns + ` FROM users AS u WHERE u.stripe_subscription_id = :stripe_subscription_id`

	return s.queryOne(ctx, q, data)
}

// QueryByOwner retrieves the members of a tenant, the owner included.
func (s *Store) QueryByOwner(ctx context.Context, ownerID uuid.UUID) ([]userbus.User, error) {
	data := struct {
		OwnerID string `db:"owner_id"`
	}{
		OwnerID: ownerID.String(),
	}

	const q = `SELECT` + userColumns + `
	FROM
		users AS u
	WHERE
		COALESCE(u.owner_id, u.user_id) = :owner_id
	ORDER BY
		u.name`

	var dbUsrs []userDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, q, data, &dbUsrs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUsers(dbUsrs)
}

// QueryOwners retrieves a page of tenant owners from the database.
func (s *Store) QueryOwners(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, page page.Page) ([]userbus.User, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `SELECT` + userColumns + ` FROM users AS u`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbUsrs []userDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &dbUsrs); err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusUsers(dbUsrs)
}

// CountOwners returns the number of tenant owners matching the filter.
func (s *Store) CountOwners(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		users AS u`

	buf := bytes.NewBufferString(q)
	applyFilter(filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, buf.String(), data, &count); err != nil {
		return 0, fmt.Errorf("db: %w", err)
	}

	return count.Count, nil
}

// =============================================================================

// CreateIdentity inserts the credentials of a user.
func (s *Store) CreateIdentity(ctx context.Context, idn userbus.Identity) error {
	const q = `
	INSERT INTO identities
		(identity_id, email, password_hash, metadata, created_at)
	VALUES
		(:identity_id, :email, :password_hash, :metadata, :created_at)`

	dbIdn, err := toDBIdentity(idn)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbIdn); err != nil {
		if isUniqueEmail(err) {
			return fmt.Errorf("namedexeccontext: %w", userbus.ErrUniqueEmail)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// UpdateIdentity replaces the email and password hash of a user.
func (s *Store) UpdateIdentity(ctx context.Context, idn userbus.Identity) error {
	const q = `
	UPDATE
		identities
	SET
		email = :email,
		password_hash = :password_hash,
		metadata = :metadata
	WHERE
		identity_id = :identity_id`

	dbIdn, err := toDBIdentity(idn)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, dbIdn); err != nil {
		if isUniqueEmail(err) {
			return userbus.ErrUniqueEmail
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// DeleteIdentity removes the credentials of a user.
func (s *Store) DeleteIdentity(ctx context.Context, idn userbus.Identity) error {
	data := struct {
		ID string `db:"identity_id"`
	}{
		ID: idn.ID.String(),
	}

	const q = `DELETE FROM identities WHERE identity_id = :identity_id`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, data); err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// QueryIdentityByEmail gets the credentials registered under the email.
func (s *Store) QueryIdentityByEmail(ctx context.Context, email mail.Address) (userbus.Identity, error) {
	data := struct {
		Email string `db:"email"`
	}{
		Email: email.Address,
	}

	const q = `
	SELECT
		identity_id, email, password_hash, metadata, created_at
	FROM
		identities
	WHERE
		email = :email`

	return s.queryIdentity(ctx, q, data)
}

// QueryIdentityByID gets the credentials of the specified user.
func (s *Store) QueryIdentityByID(ctx context.Context, identityID uuid.UUID) (userbus.Identity, error) {
	data := struct {
		ID string `db:"identity_id"`
	}{
		ID: identityID.String(),
	}

	const q = `
	SELECT
		identity_id, email, password_hash, metadata, created_at
	FROM
		identities
	WHERE
		identity_id = :identity_id`

	return s.queryIdentity(ctx, q, data)
}

// =============================================================================

func (s *Store) queryOne(ctx context.Context, q string, data any) (userbus.User, error) {
	var dbUsr userDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbUsr); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return userbus.User{}, fmt.Errorf("db: %w", userbus.ErrNotFound)
		}
		return userbus.User{}, fmt.Errorf("db: %w", err)
	}

	return toBusUser(dbUsr)
}

func (s *Store) queryIdentity(ctx context.Context, q string, data any) (userbus.Identity, error) {
	var dbIdn identityDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &dbIdn); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return userbus.Identity{}, fmt.Errorf("db: %w", userbus.ErrNotFound)
		}
		return userbus.Identity{}, fmt.Errorf("db: %w", err)
	}

	return toBusIdentity(dbIdn)
}

func isUniqueEmail(err error) bool {
	var dupErr sqldb.ErrDBDuplicatedEntry
	if !errors.As(err, &dupErr) {
		return false
	}

	switch dupErr.Column {
	case "uq_users_email", "uq_identities_email":
		return true
	}

	return false
}
